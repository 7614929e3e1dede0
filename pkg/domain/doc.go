/*
Package domain contains the core value types of the promotion wizard.

It is kept free of I/O: the selection store, the paginated catalog manager and the
wizard controller all exchange these types, while adapters translate them to and from
transports and persistence.

# Key Entities

  - ProductSelection / StoreSelection: user-chosen items with their edited attributes.
  - Snapshot: an isolated copy of a wizard session (name, products, stores).
  - CatalogPage / CatalogItem: one fetched page and its derived per-row selection view.
  - SubmissionPayload: the record handed to the external submit service.
  - SessionRecord: what a session store persists between host calls.
*/
package domain
