//go:build !countblock_debug

package countblock

import "github.com/tamirms/ngramcount/internal/ngram"

// debugCheckSorted is a no-op in non-debug builds.
func debugCheckSorted(b *Block, s ngram.Schedule) {}
