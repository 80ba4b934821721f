// Package record defines the two record kinds held by the prompt store.
//
// A Prompt is a prompt/completion pair keyed by a caller-generated ID and
// filed under a list by name. A List is keyed by its name. The reference
// from Prompt.ListName to List.Name is soft: deleting a list leaves its
// prompts in place.
//
// List names are NFC normalized before use as keys so that visually
// identical names collide.
package record
