package catalog

// DefaultPhysicalVariables is the catalog of numeric sample columns that the
// study orchestrator compares against the compendium. Names match the source
// table columns. The set is overridable through configuration.
func DefaultPhysicalVariables() []string {
	return []string{
		// Nitrogen
		"ammonium_nitrogen_numeric",
		"nitrate_nitrogen_numeric",
		"nitrite_nitrogen_numeric",
		"tot_nitro_numeric",

		// Carbon
		"tot_carb",
		"org_carb_has_numeric_value",
		"diss_org_carb_has_numeric_value",
		"diss_inorg_carb_has_numeric_value",
		"carb_nitro_ratio",

		// Minerals and metals
		"calcium_numeric",
		"magnesium_numeric",
		"manganese_numeric",
		"potassium_numeric",
		"zinc_numeric",
		"sodium_has_numeric_value",
		"chloride_has_numeric_value",
		"sulfate_has_numeric_value",
		"diss_iron_has_numeric_value",

		// Phosphorus
		"tot_phosp_numeric",
		"soluble_react_phosp_has_numeric_value",

		// Physical parameters
		"ph",
		"temp_has_numeric_value",
		"conduc_has_numeric_value",
		"diss_oxygen_has_numeric_value",
		"chlorophyll_has_numeric_value",
		"water_content_numeric",

		// Depth and size
		"depth",
		"samp_size_numeric",

		// Environmental
		"abs_air_humidity",
		"avg_temp",
		"humidity",
		"photon_flux",
		"solar_irradiance",
		"wind_speed",
		"latitude",
		"longitude",

		// Host
		"host_age_numeric",
	}
}

// EcosystemVariables is the catalog of categorical classification columns
// summarized per study and queryable compendium-wide.
func EcosystemVariables() []string {
	return []string{
		"ecosystem",
		"ecosystem_category",
		"ecosystem_type",
		"ecosystem_subtype",
		"specific_ecosystem",
		"env_broad_scale_label",
		"env_local_scale_label",
		"env_medium_label",
	}
}

// IsPhysicalVariable reports whether name is in the physical catalog.
func IsPhysicalVariable(name string) bool {
	for _, v := range DefaultPhysicalVariables() {
		if v == name {
			return true
		}
	}
	return false
}

// IsEcosystemVariable reports whether name is in the ecosystem catalog.
func IsEcosystemVariable(name string) bool {
	for _, v := range EcosystemVariables() {
		if v == name {
			return true
		}
	}
	return false
}
