package config

import "sort"

var Presets = map[string]map[string]*Config{
	"classic": {
		// Campus outbreak: one case among 7138 residents, one contact in N per day.
		"swine_flu": {
			Model: "classic", Integrator: "euler", Horizon: 40,
			Population: Population{N: 7138, I0: 1},
			Rates:      map[string]Expr{"beta": "1.0 / N", "k": "0.4"},
		},
		"contained": {
			Model: "classic", Integrator: "refined", Substeps: 10, Horizon: 40,
			Population: Population{N: 7138, I0: 1},
			Rates:      map[string]Expr{"beta": "1.0 / N", "k": "5.0"},
		},
		"slow_recovery": {
			Model: "classic", Integrator: "euler", Horizon: 60,
			Population: Population{N: 7138, I0: 1},
			Rates:      map[string]Expr{"beta": "1.0 / N", "k": "0.2"},
		},
	},
	"rumor": {
		// 266 students, 8 rationals who debunk, 1 rumor starter.
		"exam_cancel": {
			Model: "rumor", Integrator: "euler", Horizon: 15,
			Population: Population{N: 275, I0: 1, R0: 8},
			Rates:      map[string]Expr{"b": "0.004", "k": "0.01"},
		},
		"slow_debunk": {
			Model: "rumor", Integrator: "euler", Horizon: 15,
			Population: Population{N: 275, I0: 1, R0: 8},
			Rates:      map[string]Expr{"b": "0.004", "k": "0.002"},
		},
	},
	"extended": {
		"cult": {
			Model: "extended", Integrator: "euler", Horizon: 40,
			Population: Population{N: 7138, I0: 10},
			Rates:      map[string]Expr{"beta": "0.00014", "gamma": "0.4", "alpha": "0.05"},
		},
		"no_outreach": {
			Model: "extended", Integrator: "euler", Horizon: 40,
			Population: Population{N: 7138, I0: 10},
			Rates:      map[string]Expr{"beta": "0.00014", "gamma": "0.4", "alpha": "0"},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// DefaultPreset is the first preset the dashboard shows for a model.
func DefaultPreset(model string) string {
	switch model {
	case "rumor":
		return "exam_cancel"
	case "extended":
		return "cult"
	default:
		return "swine_flu"
	}
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
