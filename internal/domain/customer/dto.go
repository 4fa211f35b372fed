// internal/domain/customer/dto.go
package customer

type CreateCustomerRequest struct {
	FullName string   `json:"full_name" binding:"required"`
	Login    string   `json:"login" binding:"required"`
	Secret   string   `json:"secret" binding:"required"`
	PlanID   *int64   `json:"plan_id"`
	RouterID *int64   `json:"router_id"`
	OltID    *int64   `json:"olt_id"`
	Tags     []string `json:"tags"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}

type RegisterONURequest struct {
	Serial    string `json:"serial" binding:"required"`
	Interface string `json:"interface" binding:"required"`
	OnuIndex  string `json:"onu_index" binding:"required"`
	VLAN      int    `json:"vlan"`

	// Vendor profile overrides, driver defaults apply when empty
	OnuType        string `json:"onu_type"`
	TcontProfile   string `json:"tcont_profile"`
	LineProfile    string `json:"line_profile"`
	ServiceProfile string `json:"service_profile"`
	Description    string `json:"description"`
}
