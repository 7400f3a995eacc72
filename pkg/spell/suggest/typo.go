package suggest

import "github.com/client9/misspell"

// CommonTypos is the English common-misspelling table shipped with
// misspell, usable with WithTypos
func CommonTypos() []string {
	return misspell.DictMain
}
