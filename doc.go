// Package biblio implements the client-side core of a library management
// system: bearer token decoding, session persistence, role based access
// policy, and the loan lifecycle rules. The gateway subpackage builds the
// remote API clients on top of this core.
package biblio
