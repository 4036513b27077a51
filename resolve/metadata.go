package resolve

import (
	"strconv"
	"strings"

	"github.com/metahq/metahq/errors"
	"github.com/metahq/metahq/hq"
	"github.com/metahq/metahq/store"
)

// JoinMetadata appends metadata columns to a resolved table, in the order
// requested. Fields must exist at the table's level; row order is untouched.
// Entities missing a metadata record get empty values.
func JoinMetadata(table *Table, st *store.Store, fields []string) error {
	supported := hq.MetadataFields(string(table.Level))

	for _, field := range fields {
		field = strings.ToLower(strings.TrimSpace(field))
		if !contains(supported, field) {
			return errors.NewUnsupportedMetadataFieldError(field, string(table.Level))
		}

		for _, entity := range table.Entities {
			meta, ok := st.Meta(entity, table.Level)
			if !ok {
				table.setMeta(entity, field, "")
				continue
			}
			table.setMeta(entity, field, metaValue(meta, field))
		}
		table.MetaFields = append(table.MetaFields, field)
	}
	return nil
}

func metaValue(meta store.Metadata, field string) string {
	switch field {
	case "series":
		return meta.SeriesID
	case "platform":
		return meta.Platform
	case "title":
		return meta.Title
	case "description":
		return meta.Description
	case "sample_count":
		return strconv.Itoa(meta.SampleCount)
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
