package gen

var (
	// FeatureExcludeDeprecatedFields drops the deprecated flat filter and
	// mutation fields from generated inputs, leaving only the generic
	// nested forms.
	FeatureExcludeDeprecatedFields = Feature{
		Name:        "excludeDeprecatedFields",
		Stage:       Stable,
		Default:     false,
		Description: "Omits deprecated flat filter and mutation fields such as name_CONTAINS",
	}

	// FeatureSubscriptions generates the subscription root and event types.
	// It is enabled by the orchestrator when a subscription engine is set.
	FeatureSubscriptions = Feature{
		Name:        "subscriptions",
		Stage:       Beta,
		Default:     false,
		Description: "Generates created, updated and deleted subscription events per entity",
	}

	// FeatureFederation generates a federation subgraph: the _Any and
	// _Entity types, Query._service and Query._entities, and keeps
	// federation directives in the output.
	FeatureFederation = Feature{
		Name:        "federation",
		Stage:       Alpha,
		Default:     false,
		Description: "Generates a federation subgraph schema",
	}

	// AllFeatures holds a list of all feature-flags.
	AllFeatures = []Feature{
		FeatureExcludeDeprecatedFields,
		FeatureSubscriptions,
		FeatureFederation,
	}
)

// FeatureStage describes the stage of the codegen feature.
type FeatureStage int

const (
	_ FeatureStage = iota

	// Experimental features are in development, and actively being tested.
	Experimental

	// Alpha features are features whose initial development was finished,
	// but we expect breaking-changes to their output.
	Alpha

	// Beta features are Alpha features that were documented, and no
	// breaking-changes are expected for them.
	Beta

	// Stable features are Beta features that were running for a while.
	Stable
)

// A Feature of the schema generator.
type Feature struct {
	// Name of the feature.
	Name string

	// Stage of the feature.
	Stage FeatureStage

	// Default values indicates if this feature is enabled by default.
	Default bool

	// A Description of this feature.
	Description string
}

func featureByName(name string) (Feature, bool) {
	for _, f := range AllFeatures {
		if f.Name == name {
			return f, true
		}
	}
	return Feature{}, false
}
