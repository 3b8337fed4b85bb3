// Package lang rewrites calls followed by a trailing block into calls that
// take the block as a closure argument.
//
// # Overview
//
// The input is Rust-like token syntax. A call expression immediately
// followed by a brace-delimited block
//
//	spawn(worker, 3) { run(); }
//
// is rewritten so that the block becomes the last argument:
//
//	spawn(worker, 3, || { run(); })
//
// Method calls are supported the same way:
//
//	pool.submit::<Job>() { work() }  =>  pool.submit::<Job>(|| { work() })
//
// # Parameters
//
// A block may begin with a closure parameter list, which moves into the
// closure head. Parameters may carry type annotations:
//
//	each(items) { |item, idx: usize| show(item, idx); }
//	=>  each(items, |item, idx: usize| { show(item, idx); })
//
// The list may instead be written between the call and the block:
//
//	each(items) (item, idx: usize) -> { show(item, idx); }
//
// Only one parameter list may be given per invocation.
//
// # Pipeline
//
// Source text is split into token trees by [Lex]. [Locate] finds the
// trailing block, [ParseCall] classifies the call head, and [ParseBlock]
// extracts the parameter list and statements. [Rewrite] assembles the
// result. Whitespace and comments are carried on every token, so the
// untouched parts of the input appear in the output exactly as written.
//
// [ExpandString] and [ExpandReader] apply [Rewrite] to every invocation
// of a configured macro (with_block! by default) within a whole source
// file. Nested invocations are expanded first.
//
// # Errors
//
// All failures are [*Error] values derived from the sentinels in this
// package, so errors.Is(err, ErrMissingBlock) and similar checks hold. The
// attributes attached to an error (position, offending text) are logged
// when the error is passed to slog.
package lang
