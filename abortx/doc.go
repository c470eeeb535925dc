// Package abortx provides cancellation-propagating combinators for
// composing asynchronous work. A Controller owns a one-shot broadcast
// Signal; Execute adapts callback-based operations into abortable calls;
// All and Race run groups of abortable operations under a derived signal;
// Spawn runs a structured scope whose forked children are cancelled when
// the scope exits or any child fails.
package abortx
