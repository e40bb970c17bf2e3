package common

const (
	ComponentListener    = "listener"
	ComponentNodeClient  = "node-client"
	ComponentClassifier  = "classifier"
	ComponentDispatcher  = "dispatcher"
	ComponentProcessor   = "processor"
	ComponentCheckpoint  = "checkpoint"
	ComponentContracts   = "contracts"
	ComponentDB          = "db"
	ComponentMaintenance = "maintenance"
	ComponentMetrics     = "metrics"
	ComponentAPI         = "api"
)

var AllComponents = map[string]struct{}{
	ComponentListener:    {},
	ComponentNodeClient:  {},
	ComponentClassifier:  {},
	ComponentDispatcher:  {},
	ComponentProcessor:   {},
	ComponentCheckpoint:  {},
	ComponentContracts:   {},
	ComponentDB:          {},
	ComponentMaintenance: {},
	ComponentMetrics:     {},
	ComponentAPI:         {},
}
