package group

import "github.com/trezcool/hukumu/core"

// Default is the normalization sentinel for empty/missing group references.
const Default = "default"

// Normalize trims a group reference and falls back to Default when empty.
// Team and Assessment records may carry blank or missing groups (legacy data);
// every group comparison goes through this.
func Normalize(value string) string {
	if v := core.CleanString(value); v != "" {
		return v
	}
	return Default
}

// NewGroup contains information needed to register a new Group.
type NewGroup struct {
	Name string `json:"name" validate:"required,groupslug"`
}

func (ng *NewGroup) Validate() error {
	ng.Name = core.CleanString(ng.Name)
	return core.Validate.Struct(ng)
}

// Email is a group's notification recipient mapping. An absent mapping is a
// normal condition, not an error: notifications for that group are skipped.
type Email struct {
	GroupName string `json:"groupName"`
	Email     string `json:"email" validate:"omitempty,email"`
}

func (ge *Email) Validate() error {
	ge.GroupName = core.CleanString(ge.GroupName)
	ge.Email = core.CleanString(ge.Email)
	return core.Validate.Struct(ge)
}
