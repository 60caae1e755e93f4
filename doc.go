// Package frag is a safe, composable builder for parameterized SQL
// statements aimed at a PostgreSQL-style wire protocol. Callers assemble
// SQL from typed fragments — raw text, identifiers, bound values,
// indentation markers, parenthesization markers, symbol-keyed identifier
// aliases, and lazy placeholders — and then compile the composed tree into
// a numbered-placeholder query string ($1, $2, …) with a parallel slice of
// extracted values.
//
// Only fragments produced by this package's own constructors are ever
// accepted where a fragment is expected: every node carries an unforgeable
// trust mark, so a plain string or a value that merely looks like a
// fragment (for example after a JSON round trip) is rejected with
// ErrInvalidFragment. That is the package's sole anti-injection guarantee;
// every other entry point funnels through the same constructors.
package frag
