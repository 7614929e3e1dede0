/*
Package promowizard is a three-step wizard for creating a promotion: name it, pick
products with a discount from a paginated catalog, then choose target stores.

# Concept

A wizard keeps everything the user has chosen in a selection store shared by its steps.
Each step validates itself on Next and only then commits its edits; the product step
writes every toggle and discount straight into the store, so selections survive paging
through the catalog. Submit turns the store into a single payload for the promotion
service.

The core never performs I/O directly: catalog, submit and host UI are ports, and
adapters provide memory, Redis, remote HTTP, JSON API and MCP implementations.

# Usage

	cat := memory.NewCatalog(5, records...)
	c := wizard.New(cat, remote, wizard.WithAccountID("001ACC"), wizard.WithShell(shell))
	c.Open(ctx)

	c.NameStep().SetName("Spring Sale")
	c.Next(ctx)
	c.Products().Toggle("P1", true)
	c.Products().EditDiscount("P1", "20")
	c.Next(ctx)
	c.StoreStep().AddStore(domain.StoreSelection{StoreID: "S1", StoreName: "Downtown"})
	res, err := c.Submit(ctx)

Hosts that serve many users at once go through session.Manager, which serializes calls
per session and persists them to a ports.SessionStore.
*/
package promowizard
