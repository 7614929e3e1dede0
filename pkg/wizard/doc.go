/*
Package wizard sequences the three steps of the promotion wizard and submits the result.

A Controller owns one selection.Store and the three step components that share it:

  - NameStep (step 1) keeps a working copy of the promotion name.
  - catalog.Manager (step 2) edits the product set page by page.
  - StoreStep (step 3) keeps a working list of target stores.

Next asks the active step to validate itself; a valid step has committed its data
into the store by the time it returns. Previous never revalidates and never discards
committed data. Submit builds the payload from the store snapshot and calls the
submit service, reporting the outcome to the host through a ports.Shell.
*/
package wizard
