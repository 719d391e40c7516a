package notes

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

//go:embed data/base_notes.json
var baseNotesJSON []byte

//go:embed data/master_library.json
var masterLibraryJSON []byte

// DefaultBaseNotes 內建的主資料集
func DefaultBaseNotes() []BaseNote {
	var notes []BaseNote
	if err := json.Unmarshal(baseNotesJSON, &notes); err != nil {
		panic(fmt.Sprintf("embedded base notes: %v", err))
	}
	return notes
}

// DefaultMasterLibrary 內建的原料庫
func DefaultMasterLibrary() []MasterNote {
	notes, err := ParseMasterLibrary(masterLibraryJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded master library: %v", err))
	}
	return notes
}

// DefaultCatalog 以內建資料與指定的使用者別名建立目錄
func DefaultCatalog(userAliases []Alias) *Catalog {
	return BuildCatalog(DefaultBaseNotes(), DefaultMasterLibrary(), userAliases)
}

// ParseMasterLibrary 解析原料庫，接受陣列或包在 items / notes / library 欄位內的格式
func ParseMasterLibrary(data []byte) ([]MasterNote, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid master library JSON")
	}

	payload := gjson.ParseBytes(data)
	if payload.IsObject() {
		for _, field := range []string{"items", "notes", "library"} {
			if inner := payload.Get(field); inner.IsArray() {
				payload = inner
				break
			}
		}
	}
	if !payload.IsArray() {
		return nil, fmt.Errorf("master library must be an array")
	}

	var notes []MasterNote
	if err := json.Unmarshal([]byte(payload.Raw), &notes); err != nil {
		return nil, fmt.Errorf("unmarshal master library: %w", err)
	}
	return notes, nil
}
