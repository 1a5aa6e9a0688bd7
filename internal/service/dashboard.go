package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Dkbhardwaj07/personality-assessment-system/internal/domain"
)

// DashboardPage es una pagina filtrada del listado de candidatos.
type DashboardPage struct {
	Rows       []domain.PersonalityProfile `json:"rows"`
	TotalCount int                         `json:"total_count"`
	Page       int                         `json:"page"`
	PageSize   int                         `json:"page_size"`
}

// View filtra por nombre o email (sin distinguir mayusculas) y pagina sin reordenar.
// Paginas fuera de rango o parametros negativos devuelven rows vacio con el total correcto.
func View(profiles []domain.PersonalityProfile, filter string, page, pageSize int) DashboardPage {
	needle := strings.ToLower(strings.TrimSpace(filter))

	filtered := make([]domain.PersonalityProfile, 0, len(profiles))
	for _, p := range profiles {
		if needle == "" ||
			strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Email), needle) {
			filtered = append(filtered, p)
		}
	}

	out := DashboardPage{
		Rows:       []domain.PersonalityProfile{},
		TotalCount: len(filtered),
		Page:       page,
		PageSize:   pageSize,
	}
	if page < 0 || pageSize <= 0 || page > len(filtered)/pageSize {
		return out
	}
	start := page * pageSize
	end := start + pageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	if start < end {
		out.Rows = filtered[start:end]
	}
	return out
}

// DashboardViewModel cachea el listado para el dashboard y lo mantiene con los eventos en vivo.
type DashboardViewModel struct {
	mu       sync.RWMutex
	lister   ProfileLister
	profiles []domain.PersonalityProfile
	index    map[string]int
}

func NewDashboardViewModel(lister ProfileLister) *DashboardViewModel {
	return &DashboardViewModel{lister: lister, index: make(map[string]int)}
}

// Refresh recarga la cache con un escaneo completo del store.
func (d *DashboardViewModel) Refresh(ctx context.Context) error {
	if d.lister == nil {
		return nil
	}
	profiles, err := d.lister.List(ctx)
	if err != nil {
		return fmt.Errorf("list profiles: %w", err)
	}

	index := make(map[string]int, len(profiles))
	kept := make([]domain.PersonalityProfile, 0, len(profiles))
	for _, p := range profiles {
		if i, ok := index[p.ID]; ok {
			kept[i] = p
			continue
		}
		index[p.ID] = len(kept)
		kept = append(kept, p)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.profiles = kept
	d.index = index
	return nil
}

// OnProfileUpdated reemplaza el perfil en su posicion o lo agrega al final.
func (d *DashboardViewModel) OnProfileUpdated(profile domain.PersonalityProfile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i, ok := d.index[profile.ID]; ok {
		d.profiles[i] = profile
		return
	}
	d.index[profile.ID] = len(d.profiles)
	d.profiles = append(d.profiles, profile)
}

func (d *DashboardViewModel) View(filter string, page, pageSize int) DashboardPage {
	d.mu.RLock()
	defer d.mu.RUnlock()
	// View copia las filas, la cache puede seguir mutando.
	return View(d.profiles, filter, page, pageSize)
}
