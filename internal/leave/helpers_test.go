package leave_test

import "github.com/frahmantamala/hrms-portal/internal/hrprofile"

func hrDecision(status string) hrprofile.DecisionDTO {
	return hrprofile.DecisionDTO{Status: status}
}
