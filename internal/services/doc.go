// Package services hosts the external platform clients and the shared error
// taxonomy they report through.
//
// Sentinel errors distinguish transport failures (call again, nothing is
// known), legitimately empty results (a normal outcome with its own code
// path), and exhausted retry budgets. Wrap attaches component and operation
// context so callers can classify failures without parsing messages.
package services
