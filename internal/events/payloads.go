package events

// CreateNoblePayload is the payload of noble.create.
type CreateNoblePayload struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// ResourcesPayload is the payload of noble.add_resources, noble.remove_resources
// and noble.collect_yield.
type ResourcesPayload struct {
	Resources map[string]int64 `json:"resources"`
}

// AchievementPayload is the payload of noble.unlock_achievement.
type AchievementPayload struct {
	ID string `json:"id"`
}

// EffectPayload is the payload of noble.apply_effect.
type EffectPayload struct {
	Name            string  `json:"name"`
	Resource        string  `json:"resource"`
	Multiplier      float64 `json:"multiplier"`
	DurationSeconds int64   `json:"duration_seconds"`
}

// AcquireTerritoryPayload is the payload of territory.acquire.
type AcquireTerritoryPayload struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// UpgradeTerritoryPayload is the payload of territory.upgrade.
type UpgradeTerritoryPayload struct {
	ID string `json:"id"`
}
