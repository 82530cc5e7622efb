// Alfred is a CLI code review assistant backed by an AI model.
//
// It reviews single files, staged and unstaged git changes, and GitHub pull
// requests, prices every request from reported token usage, and keeps a local
// journal of past reviews alongside an estimated prepaid balance.
//
// Usage:
//
//	alfred review main.go             # review one file
//	alfred diff                       # review staged changes
//	alfred diff --unstaged            # review working tree changes
//	alfred pr 42 --post               # review a PR and post the result
//	alfred history list               # browse past reviews
//	alfred costs --total              # show all-time spend
//	alfred balance set 25             # record your prepaid balance
//
// State lives under ~/.alfred.
package main
