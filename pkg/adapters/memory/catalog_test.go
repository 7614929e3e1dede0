package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/promowizard/pkg/adapters/memory"
	"github.com/aretw0/promowizard/pkg/domain"
	"github.com/aretw0/promowizard/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureYAML = `
pageSize: 2
products:
  - id: P1
    name: Widget
    category: Tools
  - id: P2
    name: Gadget
  - id: P3
    name: Hammer
    category: Tools
stores:
  - storeId: S1
    storeName: Downtown
    locationGroup: North
`

func TestParseFixture(t *testing.T) {
	f, err := memory.ParseFixture([]byte(fixtureYAML))
	require.NoError(t, err)

	assert.Equal(t, 2, f.PageSize)
	require.Len(t, f.Products, 3)
	assert.Equal(t, domain.CatalogRecord{ID: "P2", Name: "Gadget"}, f.Products[1])
	require.Len(t, f.Stores, 1)
	assert.Equal(t, "North", f.Stores[0].LocationGroup)
}

func TestParseFixture_MissingID(t *testing.T) {
	_, err := memory.ParseFixture([]byte("products:\n  - name: Nameless\n"))
	assert.Error(t, err)
}

func TestCatalog_Paging(t *testing.T) {
	f, err := memory.ParseFixture([]byte(fixtureYAML))
	require.NoError(t, err)
	c := memory.NewCatalogFromFixture(f)
	ctx := context.Background()

	resp, err := c.FetchPage(ctx, ports.CatalogRequest{PageNumber: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.TotalItemCount)
	assert.Equal(t, 2, resp.PageSize)
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "P3", resp.Records[0].ID)

	resp, err = c.FetchPage(ctx, ports.CatalogRequest{PageNumber: 5})
	require.NoError(t, err)
	assert.Empty(t, resp.Records)

	_, err = c.FetchPage(ctx, ports.CatalogRequest{PageNumber: 0})
	assert.Error(t, err)
}

func TestCatalog_CategoryFilter(t *testing.T) {
	f, err := memory.ParseFixture([]byte(fixtureYAML))
	require.NoError(t, err)
	c := memory.NewCatalogFromFixture(f)

	tools := "Tools"
	resp, err := c.FetchPage(context.Background(), ports.CatalogRequest{CategoryFilter: &tools, PageNumber: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalItemCount)
	assert.Equal(t, "P1", resp.Records[0].ID)
	assert.Equal(t, "P3", resp.Records[1].ID)
}

func TestCatalog_DefaultPageSize(t *testing.T) {
	c := memory.NewCatalog(0)
	resp, err := c.FetchPage(context.Background(), ports.CatalogRequest{PageNumber: 1})
	require.NoError(t, err)
	assert.Equal(t, memory.DefaultPageSize, resp.PageSize)
	assert.Equal(t, 0, c.Len())
}

func TestSubmitter(t *testing.T) {
	s := memory.NewSubmitter()
	ctx := context.Background()

	res, err := s.SavePromotion(ctx, domain.SubmissionPayload{PromotionName: "A"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.PromotionID)

	boom := &domain.ServiceError{StatusCode: 500, Message: "boom"}
	s.FailWith(boom)
	_, err = s.SavePromotion(ctx, domain.SubmissionPayload{PromotionName: "B"})
	assert.True(t, errors.Is(err, boom))

	require.Len(t, s.Payloads(), 1)
	assert.Equal(t, "A", s.Payloads()[0].PromotionName)
}

func TestShell_Drain(t *testing.T) {
	sh := memory.NewShell()
	sh.Notify(domain.Notification{Title: "Success", Severity: domain.SeveritySuccess})
	sh.CloseRequested()
	sh.NavigateToRecord("42")

	assert.Len(t, sh.Notifications(), 1)

	events := sh.Drain()
	require.Len(t, events, 3)
	assert.Equal(t, memory.ShellNotify, events[0].Kind)
	assert.Equal(t, memory.ShellClose, events[1].Kind)
	assert.Equal(t, "42", events[2].RecordID)
	assert.Empty(t, sh.Drain())
}

func TestShellRegistry(t *testing.T) {
	r := memory.NewShellRegistry()
	a := r.For("a")
	assert.Same(t, a, r.For("a"))
	assert.NotSame(t, a, r.For("b"))
	assert.Equal(t, 2, r.Len())

	r.Drop("a")
	assert.Equal(t, 1, r.Len())
	assert.NotSame(t, a, r.For("a"))
}
