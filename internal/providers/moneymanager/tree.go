package moneymanager

import (
	"maps"

	"github.com/shahlaukik/money-manager-mcp/internal/providers/moneymanager/decode"
)

// Keys under which /getAssetData and /getCardData nest child nodes
var childKeys = []string{"children", "assets", "assetList", "cards", "cardList", "items"}

var (
	idKeys   = []string{"id", "assetGroupId", "groupId", "assetId", "cardId"}
	nameKeys = []string{"name", "assetGroupName", "groupName", "assetName", "assetNm", "cardName"}
)

// Group is one inner node of a flattened tree
type Group struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// flattenTree turns the nested group/leaf structure of the asset and card
// endpoints into a flat list of groups and a flat list of leaves. Each leaf
// gains groupId and groupName of its nearest group.
func flattenTree(v any) ([]Group, []map[string]any) {
	f := &flattener{groups: []Group{}, leaves: []map[string]any{}}
	f.walk(unwrap(v), -1)
	return f.groups, f.leaves
}

type flattener struct {
	groups []Group
	leaves []map[string]any
}

func (f *flattener) walk(node any, parent int) {
	switch t := node.(type) {
	case []any:
		for _, item := range t {
			f.walk(item, parent)
		}
	case map[string]any:
		if key, kids := children(t); key != "" {
			f.groups = append(f.groups, Group{ID: firstString(t, idKeys), Name: firstString(t, nameKeys)})
			idx := len(f.groups) - 1
			f.walk(kids, idx)
			return
		}

		leaf := maps.Clone(t)
		if parent >= 0 {
			g := &f.groups[parent]
			g.Count++
			leaf["groupId"] = g.ID
			leaf["groupName"] = g.Name
		}
		f.leaves = append(f.leaves, leaf)
	}
}

// unwrap descends through single-key envelopes such as {"result": [...]}
func unwrap(v any) any {
	for {
		m, ok := v.(map[string]any)
		if !ok || len(m) != 1 {
			return v
		}
		var inner any
		for _, val := range m {
			inner = val
		}
		switch inner.(type) {
		case []any, map[string]any:
			v = inner
		default:
			return v
		}
	}
}

func children(m map[string]any) (string, any) {
	for _, key := range childKeys {
		switch kids := m[key].(type) {
		case []any, map[string]any:
			return key, kids
		}
	}
	return "", nil
}

func firstString(m map[string]any, keys []string) string {
	for _, key := range keys {
		if s := decode.String(m[key]); s != "" {
			return s
		}
	}
	return ""
}
