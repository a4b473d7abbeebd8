package services

import "agencycrm/internal/models"

// ContractTransitions lists the allowed contract lifecycle moves.
// Closed, Cancelled and Void are terminal.
var ContractTransitions = map[models.ContractStatus]map[models.ContractStatus]bool{
	models.ContractDraft:     {models.ContractActive: true, models.ContractCancelled: true, models.ContractVoid: true},
	models.ContractActive:    {models.ContractClosed: true, models.ContractVoid: true},
	models.ContractClosed:    {},
	models.ContractCancelled: {},
	models.ContractVoid:      {},
}

func canTransition[S comparable](current, to S, table map[S]map[S]bool) bool {
	nexts, ok := table[current]
	if !ok {
		return false
	}
	return nexts[to]
}
