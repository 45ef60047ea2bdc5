package session

import "github.com/imyousuf/forgewiki/internal/model"

// ItemInfo bundles everything known about one internal id, as rendered on
// that item's info page.
type ItemInfo struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"desc,omitempty"`
	Item        *model.Item   `json:"item,omitempty"`
	Prefab      *model.Prefab `json:"prefab,omitempty"`
	ProducedBy  []string      `json:"producedBy,omitempty"` // recipe names
	UsedIn      []string      `json:"usedIn,omitempty"`     // recipe names
	FarmedFrom  []string      `json:"farmedFrom,omitempty"` // plant names
	BredFrom    []string      `json:"bredFrom,omitempty"`   // animal names
	FedTo       []string      `json:"fedTo,omitempty"`      // animal names
}

// ItemInfo collects the info page data for id.
func (s *Session) ItemInfo(id string) ItemInfo {
	info := ItemInfo{
		ID:          id,
		Name:        s.names.Name(id),
		Description: s.names.Description(id),
	}
	if item, ok := s.cat.Items.Get(id); ok {
		info.Item = item
	}
	if p, ok := s.cat.Prefabs.Get(id); ok {
		info.Prefab = p
	}
	for _, r := range s.index.RecipesByOutput(id) {
		info.ProducedBy = append(info.ProducedBy, r.Name)
	}
	for _, r := range s.index.RecipesByInput(id) {
		info.UsedIn = append(info.UsedIn, r.Name)
	}
	for _, e := range s.index.FarmingUsage(id) {
		info.FarmedFrom = append(info.FarmedFrom, e.Plant)
	}
	for _, e := range s.index.HusbandryUsage(id) {
		info.BredFrom = append(info.BredFrom, e.Name)
	}
	for _, e := range s.index.HusbandryFeeders(id) {
		info.FedTo = append(info.FedTo, e.Name)
	}
	return info
}

// ItemIDs returns the ids that get an info page: every declared item, in
// declaration order.
func (s *Session) ItemIDs() []string {
	return s.cat.Items.Keys()
}
