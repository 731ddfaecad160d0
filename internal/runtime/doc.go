/*
Package runtime implements the dialog interpreter.

Every call is a single pass over session state: resolve the active dialog
and position, consume a pending answer or a selection, advance by branch
priority, notify the flow handler and render the next step. The engine
keeps no state between calls; Position, the trace and the answer buffer
all live in the conversation's session.Scope.
*/
package runtime
