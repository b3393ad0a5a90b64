package prompts

import (
	_ "embed"
	"fmt"
	"strings"
)

// Embedded prompt files

//go:embed unified_check.txt
var unifiedCheck string

//go:embed unified_check_user.txt
var unifiedCheckUser string

//go:embed paraphrase.txt
var paraphrase string

//go:embed paraphrase_user.txt
var paraphraseUser string

//go:embed improve.txt
var improve string

//go:embed improve_user.txt
var improveUser string

//go:embed synonyms.txt
var synonyms string

//go:embed synonyms_user.txt
var synonymsUser string

//go:embed rewrite_simplify.txt
var rewriteSimplify string

//go:embed rewrite_expand.txt
var rewriteExpand string

func UnifiedCheck() string    { return strings.TrimSpace(unifiedCheck) }
func Paraphrase() string      { return strings.TrimSpace(paraphrase) }
func Improve() string         { return strings.TrimSpace(improve) }
func Synonyms() string        { return strings.TrimSpace(synonyms) }
func RewriteSimplify() string { return strings.TrimSpace(rewriteSimplify) }
func RewriteExpand() string   { return strings.TrimSpace(rewriteExpand) }

// User-turn templates take the user's text as their only argument.

func UnifiedCheckUser(text string) string { return fill(unifiedCheckUser, text) }
func ParaphraseUser(text string) string   { return fill(paraphraseUser, text) }
func ImproveUser(text string) string      { return fill(improveUser, text) }
func SynonymsUser(word string) string     { return fill(synonymsUser, word) }

func fill(tmpl, text string) string {
	return fmt.Sprintf(strings.TrimRight(tmpl, "\n"), text)
}
