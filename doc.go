/*
Package cao implements the runtime for C∀O, a concatenative (postfix,
stack-based) language: literals and named words push and pop values on a
single linear data stack, new words are defined with a declared or inferred
stack-effect signature, and every derived definition carries an ordinal cost
used to argue that it terminates.

The pipeline mirrors a typical line-oriented language front end: source text
is lexed (Lex) into a token stream, parsed (Parse) into statements, and each
statement is either evaluated directly against a stack machine or, for a word
definition, run through type inference and ordinal verification before being
installed into the dictionary. Runtime ties these stages together behind a
small façade meant to be driven by a host: a REPL, a test, or the cmd/cao
command line.

A Runtime owns all of its state (stack, dictionary, pending signatures,
call stack) exclusively; it is not safe to share a single Runtime across
goroutines, but independent Runtimes never interfere with one another.
*/
package cao
