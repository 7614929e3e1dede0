/*
Package selection implements the session-scoped selection store of the promotion wizard.

A Store is the single source of truth for one wizard session: the promotion name,
the selected products with their discounts and the selected stores. Every mutation
fans out a snapshot to the registered listeners before the mutating call returns.

Stores are constructed explicitly and handed to the step components that need them;
there is no package-level instance.
*/
package selection
