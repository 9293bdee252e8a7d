package markup

import (
	"strings"

	"github.com/samber/lo"
)

// Символы, которые в MarkdownV2 телеграма надо экранировать в обычном тексте
const specialChars = "\\_*[]()~`>#+-=|{}.!"

var replacer = strings.NewReplacer(lo.FlatMap([]rune(specialChars), func(r rune, _ int) []string {
	return []string{string(r), "\\" + string(r)}
})...)

// Функция которая делает escape спец символы markdown специально для телеграма
func EscapeForMarkdown(src string) string {
	return replacer.Replace(src)
}

// Bold - жирный текст, содержимое экранируется
func Bold(src string) string {
	return "*" + EscapeForMarkdown(src) + "*"
}

// Code - моноширинный текст. Внутри экранируются только ` и \
func Code(src string) string {
	return "`" + strings.NewReplacer("\\", "\\\\", "`", "\\`").Replace(src) + "`"
}
