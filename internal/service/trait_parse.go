package service

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/Dkbhardwaj07/personality-assessment-system/internal/domain"
)

const neutralTraitValue = 50.0

var (
	fenceStartRe = regexp.MustCompile("(?is)^\\s*```(?:json)?\\s*")
	fenceEndRe   = regexp.MustCompile("(?is)\\s*```\\s*$")
)

// neutralTraits son los valores usados cuando el LLM no devuelve un rasgo.
func neutralTraits() domain.TraitScores {
	return domain.TraitScores{
		Openness:          neutralTraitValue,
		Conscientiousness: neutralTraitValue,
		Extraversion:      neutralTraitValue,
		Agreeableness:     neutralTraitValue,
		Neuroticism:       neutralTraitValue,
	}
}

// parseTraitScores extrae los rasgos de la respuesta del LLM. Acepta un objeto plano
// ({"openness": 80}), anidado un nivel ({"personality_traits": {...}}) o la lista
// {"traits": [{"trait": "openness", "value": 80}]}. Claves sin distinguir mayusculas.
// Los rasgos ausentes quedan en 50; ok es false si no se reconocio ninguno.
func parseTraitScores(raw string) (domain.TraitScores, bool) {
	scores := neutralTraits()

	cleaned := cleanLLMJSONResponse(raw)
	candidate := extractFirstJSONObject(cleaned)
	if candidate == "" {
		candidate = extractFirstJSONObject(raw)
	}
	if candidate == "" {
		return scores, false
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return scores, false
	}

	found := applyTraitMap(&scores, obj)
	if found == 0 {
		for key, v := range obj {
			switch nested := v.(type) {
			case map[string]any:
				found += applyTraitMap(&scores, nested)
			case []any:
				if strings.EqualFold(key, "traits") {
					found += applyTraitList(&scores, nested)
				}
			}
			if found > 0 {
				break
			}
		}
	}
	return scores, found > 0
}

func applyTraitMap(scores *domain.TraitScores, obj map[string]any) int {
	found := 0
	for key, v := range obj {
		value, ok := v.(float64)
		if !ok {
			continue
		}
		if scores.Set(strings.ToLower(strings.TrimSpace(key)), clampTrait(value)) {
			found++
		}
	}
	return found
}

func applyTraitList(scores *domain.TraitScores, items []any) int {
	found := 0
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name, _ := entry["trait"].(string)
		value, ok := entry["value"].(float64)
		if !ok {
			continue
		}
		if scores.Set(strings.ToLower(strings.TrimSpace(name)), clampTrait(value)) {
			found++
		}
	}
	return found
}

func clampTrait(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// cleanLLMJSONResponse quita fences ```json ... ``` y BOM, dejando el contenido usable.
func cleanLLMJSONResponse(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = strings.TrimPrefix(s, "\uFEFF")
	s = fenceStartRe.ReplaceAllString(s, "")
	s = fenceEndRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// extractFirstJSONObject devuelve el primer objeto JSON balanceado del texto, respetando strings.
func extractFirstJSONObject(input string) string {
	start := strings.IndexByte(input, '{')
	if start == -1 {
		return ""
	}

	inString := false
	escape := false
	depth := 0

	for i := start; i < len(input); i++ {
		ch := input[i]

		if inString {
			switch {
			case escape:
				escape = false
			case ch == '\\':
				escape = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}

	return ""
}
