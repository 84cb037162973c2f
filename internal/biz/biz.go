package biz

import (
	"github.com/pulsecheck/engage/internal/biz/repo"
	"github.com/pulsecheck/engage/internal/biz/usecase"
)

// Usecases contains all usecases
type Usecases struct {
	Registry *usecase.PersonaRegistry
	Policy   *usecase.RatePolicy
	Detector *usecase.OpportunityDetector
	Filter   *usecase.SafetyFilter
	CycleLog *usecase.CycleLog
}

// NewUsecases wires the usecase layer over the given storage.
func NewUsecases(storage repo.StorageRepo, detectorCfg usecase.DetectorConfig, cycleHistory int) *Usecases {
	registry := usecase.NewPersonaRegistry()
	policy := usecase.NewRatePolicy(usecase.DefaultRateTable(), registry)
	return &Usecases{
		Registry: registry,
		Policy:   policy,
		Detector: usecase.NewOpportunityDetector(storage, policy, detectorCfg),
		Filter:   usecase.NewSafetyFilter(),
		CycleLog: usecase.NewCycleLog(cycleHistory),
	}
}
