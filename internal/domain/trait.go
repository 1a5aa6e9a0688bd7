package domain

const (
	TraitOpenness          = "openness"
	TraitConscientiousness = "conscientiousness"
	TraitExtraversion      = "extraversion"
	TraitAgreeableness     = "agreeableness"
	TraitNeuroticism       = "neuroticism"
)

// TraitNames lista los rasgos Big Five en el orden canonico de presentacion.
var TraitNames = []string{
	TraitOpenness,
	TraitConscientiousness,
	TraitExtraversion,
	TraitAgreeableness,
	TraitNeuroticism,
}

// TraitScores son los cinco valores Big Five que produce el scorer (escala 0-100).
type TraitScores struct {
	Openness          float64 `json:"openness"`          // Creatividad vs. Pragmatismo
	Conscientiousness float64 `json:"conscientiousness"` // Orden vs. Caos
	Extraversion      float64 `json:"extraversion"`      // Energia social
	Agreeableness     float64 `json:"agreeableness"`     // Amabilidad
	Neuroticism       float64 `json:"neuroticism"`       // Estabilidad emocional (inversa)
}

// Get devuelve el valor de un rasgo por nombre.
func (t TraitScores) Get(trait string) (float64, bool) {
	switch trait {
	case TraitOpenness:
		return t.Openness, true
	case TraitConscientiousness:
		return t.Conscientiousness, true
	case TraitExtraversion:
		return t.Extraversion, true
	case TraitAgreeableness:
		return t.Agreeableness, true
	case TraitNeuroticism:
		return t.Neuroticism, true
	}
	return 0, false
}

// Set asigna el valor de un rasgo por nombre; ignora nombres desconocidos.
func (t *TraitScores) Set(trait string, value float64) bool {
	switch trait {
	case TraitOpenness:
		t.Openness = value
	case TraitConscientiousness:
		t.Conscientiousness = value
	case TraitExtraversion:
		t.Extraversion = value
	case TraitAgreeableness:
		t.Agreeableness = value
	case TraitNeuroticism:
		t.Neuroticism = value
	default:
		return false
	}
	return true
}

// AsMap expone los rasgos como mapa nombre -> valor (formato de /analytics).
func (t TraitScores) AsMap() map[string]float64 {
	out := make(map[string]float64, len(TraitNames))
	for _, name := range TraitNames {
		v, _ := t.Get(name)
		out[name] = v
	}
	return out
}
