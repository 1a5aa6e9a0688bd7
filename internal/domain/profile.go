package domain

import "time"

// CandidateResponse es la entrada efimera de un candidato; no se persiste tal cual.
type CandidateResponse struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Response string `json:"response"`
}

// PersonalityProfile es el registro persistido: identidad del candidato mas sus rasgos.
// Los rasgos se serializan planos junto a la identidad.
type PersonalityProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	TraitScores
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileUpdated es el evento transitorio que viaja por el canal en vivo.
type ProfileUpdated struct {
	Profile   PersonalityProfile `json:"profile"`
	Created   bool               `json:"created"`
	Timestamp time.Time          `json:"timestamp"`
}

// AggregateSnapshot es la vista agregada (promedio por rasgo) de todos los perfiles.
type AggregateSnapshot struct {
	TraitAverages map[string]float64 `json:"trait_averages"`
	SampleCount   int                `json:"sample_count"`
}
