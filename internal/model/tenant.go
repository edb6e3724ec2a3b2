package model

// NoTagsLabel is the tag-presence entry for conversations carrying none of the funnel tags.
const NoTagsLabel = "no_tags"

// TenantConfig parameterizes how a tenant's conversations are aggregated.
type TenantConfig struct {
	// TagKey is the funnel tag that gets its own linear funnel.
	TagKey string `yaml:"tag_key" json:"tag_key"`

	// ERVVariable names the context variable holding the monetary value.
	ERVVariable string `yaml:"erv_variable" json:"erv_variable"`

	// ValueNested selects where ERVVariable is read from. When true the value
	// is a top-level context variable; otherwise it is read from the
	// conversation's live_instructions mapping.
	ValueNested bool `yaml:"value_nested" json:"value_nested"`

	// FunnelTags are the tags segmented by the funnel analysis, in display order.
	FunnelTags []string `yaml:"funnel_tags" json:"funnel_tags"`
}

// IsFunnelTag reports whether tag is one of the configured funnel tags.
func (t TenantConfig) IsFunnelTag(tag string) bool {
	for _, ft := range t.FunnelTags {
		if ft == tag {
			return true
		}
	}
	return false
}
