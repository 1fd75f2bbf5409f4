// Package transform holds the pure content transformation and the atomic
// output write used by the file state machine.
//
// Upper case-folds content with Unicode-aware rules, so characters without a
// one-to-one upper form (such as ß) expand correctly. WriteFileAtomic stages
// the output in a temp sibling and renames it into place so readers never
// observe a partially written file.
package transform
