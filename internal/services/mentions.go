package services

import "regexp"

var mentionPattern = regexp.MustCompile(`@(\w+)`)

// ExtractMentions возвращает уникальные упомянутые имена в порядке
// появления. Повторное @имя схлопывается в одно.
func ExtractMentions(body string) []string {
	matches := mentionPattern.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, match := range matches {
		name := match[1]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}
