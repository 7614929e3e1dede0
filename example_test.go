package promowizard_test

import (
	"context"
	"fmt"

	"github.com/aretw0/promowizard/pkg/adapters/memory"
	"github.com/aretw0/promowizard/pkg/domain"
	"github.com/aretw0/promowizard/pkg/ports"
	"github.com/aretw0/promowizard/pkg/wizard"
)

// Example_wizard walks a wizard from an empty session to a submitted promotion.
func Example_wizard() {
	catalog := memory.NewCatalog(5,
		domain.CatalogRecord{ID: "P1", Name: "Widget", Category: "Tools"},
		domain.CatalogRecord{ID: "P2", Name: "Gadget"},
	)
	submitter := ports.SubmitServiceFunc(func(ctx context.Context, p domain.SubmissionPayload) (domain.SubmitResult, error) {
		fmt.Printf("saving %q: %d product(s), %d store(s)\n", p.PromotionName, len(p.Products), len(p.Stores))
		return domain.SubmitResult{PromotionID: "a0X1"}, nil
	})
	shell := memory.NewShell()

	ctx := context.Background()
	c := wizard.New(catalog, submitter, wizard.WithAccountID("001ACC"), wizard.WithShell(shell))
	c.Open(ctx)

	c.NameStep().SetName("Spring Sale")
	c.Next(ctx)
	fmt.Println(c.StepTitle())

	_ = c.Products().Toggle("P1", true)
	_, _ = c.Products().EditDiscount("P1", "150")
	fmt.Println(c.Store().DiscountFor("P1"))
	c.Next(ctx)

	c.StoreStep().AddStore(domain.StoreSelection{StoreID: "S1", StoreName: "Downtown"})
	if _, err := c.Submit(ctx); err != nil {
		fmt.Println("error:", err)
	}

	for _, e := range shell.Drain() {
		switch e.Kind {
		case memory.ShellNotify:
			fmt.Println(e.Kind, e.Notification.Message)
		case memory.ShellNavigate:
			fmt.Println(e.Kind, e.RecordID)
		default:
			fmt.Println(e.Kind)
		}
	}

	// Output:
	// Step 2: Select Products
	// 100
	// saving "Spring Sale": 1 product(s), 1 store(s)
	// notify Promotion created successfully!
	// close
	// navigate a0X1
}
