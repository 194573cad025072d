// Package tables implements the file-backed TabularSource: one CSV or XLSX
// file per logical table under a data directory, with file modification
// times serving as the freshness oracle.
package tables

import (
	"strconv"

	"compendium/domain/catalog"
)

// tableSpec names the columns of one abundance table and how to derive the
// record's metadata variant. Column names follow the upstream pipeline's
// output; missing columns are tolerated and read as empty.
type tableSpec struct {
	idColumn    string
	valueColumn string
	rankColumn  string // set for taxonomic tables only
	meta        func(get func(string) string) metaFields
}

type metaFields struct {
	compound *catalog.CompoundMeta
	lipid    *catalog.LipidMeta
	protein  *catalog.ProteinMeta
	taxon    *catalog.TaxonMeta
}

func specFor(table catalog.Table) (tableSpec, bool) {
	switch table {
	case catalog.TableMetabolomics:
		return tableSpec{
			idColumn:    "Compound Name",
			valueColumn: "Peak Area",
			meta: func(get func(string) string) metaFields {
				return metaFields{compound: &catalog.CompoundMeta{
					CommonName:       get("Common Name"),
					IUPACName:        get("IUPAC Name"),
					TraditionalName:  get("Traditional Name"),
					MolecularFormula: get("Molecular Formula"),
					ChebiID:          get("ChEBI ID"),
					KeggCompoundID:   get("KEGG Compound ID"),
				}}
			},
		}, true
	case catalog.TableLipidomics:
		return tableSpec{
			idColumn:    "Lipid Molecular Species",
			valueColumn: "Area",
			meta: func(get func(string) string) metaFields {
				return metaFields{lipid: &catalog.LipidMeta{
					Class:    get("Lipid Class"),
					Category: get("Lipid Category"),
				}}
			},
		}, true
	case catalog.TableProteomics:
		return tableSpec{
			idColumn:    "Product",
			valueColumn: "SummedPeptideMASICAbundances",
			meta: func(get func(string) string) metaFields {
				gc, _ := strconv.Atoi(get("GeneCount"))
				upc, _ := strconv.Atoi(get("UniquePeptideCount"))
				return metaFields{protein: &catalog.ProteinMeta{
					ECNumber:           get("EC_Number"),
					Pfam:               get("pfam"),
					KO:                 get("KO"),
					COG:                get("COG"),
					GeneCount:          gc,
					UniquePeptideCount: upc,
				}}
			},
		}, true
	case catalog.TableGottcha:
		return taxonomicSpec("label"), true
	case catalog.TableKraken:
		return taxonomicSpec("name"), true
	case catalog.TableCentrifuge, catalog.TableContigs:
		return taxonomicSpec("lineage"), true
	default:
		return tableSpec{}, false
	}
}

func taxonomicSpec(idColumn string) tableSpec {
	return tableSpec{
		idColumn:    idColumn,
		valueColumn: "abundance",
		rankColumn:  "rank",
		meta: func(get func(string) string) metaFields {
			return metaFields{taxon: &catalog.TaxonMeta{
				Lineage:    get("lineage"),
				TaxonomyID: get("taxonomy_id"),
			}}
		},
	}
}
