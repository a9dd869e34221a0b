package store

import (
	"fmt"
	"strings"
)

// Table names.
const (
	TableVocabTerm      = "vocab_term"
	TableCellLine       = "cell_line"
	TableDerivation     = "derivation"
	TableAccession      = "accession"
	TableAllele         = "allele"
	TableAlleleSynonym  = "allele_synonym"
	TableAlleleCellLine = "allele_cell_line"
	TableAlleleMutation = "allele_mutation"
	TableReferenceAssoc = "reference_assoc"
	TableSequence       = "seq_sequence"
	TableSeqAlleleAssoc = "seq_allele_assoc"
	TableSeqMarkerAssoc = "seq_marker_assoc"
	TableSeqGeneTrap    = "seq_gene_trap"
)

type column struct {
	name string
	typ  string
}

type table struct {
	name    string
	key     string
	columns []column
}

// columnNames returns the column names in declaration order.
func (t table) columnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	return names
}

func (t table) ddl() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", t.name)
	for _, c := range t.columns {
		fmt.Fprintf(&b, "\t%s %s,\n", c.name, c.typ)
	}
	fmt.Fprintf(&b, "\tPRIMARY KEY (%s)\n)", t.key)
	return b.String()
}

// Integers are BIGINT throughout so that every driver scans them into int64
// and the DuckDB appender accepts int64 values unchanged.
var tables = []table{
	{name: TableVocabTerm, key: "term_key", columns: []column{
		{"term_key", "BIGINT"},
		{"vocab", "VARCHAR"},
		{"term", "VARCHAR"},
		{"abbreviation", "VARCHAR"},
	}},
	{name: TableCellLine, key: "cell_line_key", columns: []column{
		{"cell_line_key", "BIGINT"},
		{"name", "VARCHAR"},
		{"strain_key", "BIGINT"},
		{"derivation_key", "BIGINT"},
		{"is_mutant", "BIGINT"},
		{"created_by", "VARCHAR"},
		{"creation_date", "VARCHAR"},
	}},
	{name: TableDerivation, key: "derivation_key", columns: []column{
		{"derivation_key", "BIGINT"},
		{"name", "VARCHAR"},
		{"parent_key", "BIGINT"},
		{"creator_key", "BIGINT"},
		{"vector_key", "BIGINT"},
		{"vector_type_key", "BIGINT"},
		{"derivation_type_key", "BIGINT"},
		{"created_by", "VARCHAR"},
	}},
	{name: TableAccession, key: "accession_key", columns: []column{
		{"accession_key", "BIGINT"},
		{"acc_id", "VARCHAR"},
		{"ldb_key", "BIGINT"},
		{"object_key", "BIGINT"},
		{"object_type", "VARCHAR"},
		{"preferred", "BIGINT"},
		{"created_by", "VARCHAR"},
	}},
	{name: TableAllele, key: "allele_key", columns: []column{
		{"allele_key", "BIGINT"},
		{"symbol", "VARCHAR"},
		{"name", "VARCHAR"},
		{"strain_key", "BIGINT"},
		{"type_key", "BIGINT"},
		{"status_key", "BIGINT"},
		{"inheritance_key", "BIGINT"},
		{"created_by", "VARCHAR"},
		{"creation_date", "VARCHAR"},
		{"modification_date", "VARCHAR"},
	}},
	{name: TableAlleleSynonym, key: "synonym_key", columns: []column{
		{"synonym_key", "BIGINT"},
		{"allele_key", "BIGINT"},
		{"synonym", "VARCHAR"},
	}},
	{name: TableAlleleCellLine, key: "assoc_key", columns: []column{
		{"assoc_key", "BIGINT"},
		{"allele_key", "BIGINT"},
		{"cell_line_key", "BIGINT"},
	}},
	{name: TableAlleleMutation, key: "assoc_key", columns: []column{
		{"assoc_key", "BIGINT"},
		{"allele_key", "BIGINT"},
		{"mutation_key", "BIGINT"},
	}},
	{name: TableReferenceAssoc, key: "assoc_key", columns: []column{
		{"assoc_key", "BIGINT"},
		{"allele_key", "BIGINT"},
		{"ref_id", "VARCHAR"},
		{"assoc_type", "VARCHAR"},
	}},
	{name: TableSequence, key: "sequence_key", columns: []column{
		{"sequence_key", "BIGINT"},
		{"acc_id", "VARCHAR"},
		{"version", "VARCHAR"},
		{"description", "VARCHAR"},
		{"length", "BIGINT"},
		{"division", "VARCHAR"},
		{"molecule_type", "VARCHAR"},
		{"organism", "VARCHAR"},
		{"status", "VARCHAR"},
		{"provider", "VARCHAR"},
		{"seq_date", "VARCHAR"},
		{"created_by", "VARCHAR"},
		{"modification_date", "VARCHAR"},
	}},
	{name: TableSeqAlleleAssoc, key: "assoc_key", columns: []column{
		{"assoc_key", "BIGINT"},
		{"sequence_key", "BIGINT"},
		{"allele_key", "BIGINT"},
		{"qualifier_key", "BIGINT"},
	}},
	{name: TableSeqMarkerAssoc, key: "assoc_key", columns: []column{
		{"assoc_key", "BIGINT"},
		{"sequence_key", "BIGINT"},
		{"marker_symbol", "VARCHAR"},
	}},
	{name: TableSeqGeneTrap, key: "sequence_key", columns: []column{
		{"sequence_key", "BIGINT"},
		{"tag_method_key", "BIGINT"},
		{"vector_end_key", "BIGINT"},
		{"reverse_comp_key", "BIGINT"},
		{"good_hit_count", "BIGINT"},
		{"created_by", "VARCHAR"},
	}},
}

var tablesByName = func() map[string]table {
	m := make(map[string]table, len(tables))
	for _, t := range tables {
		m[t.name] = t
	}
	return m
}()

func lookupTable(name string) (table, error) {
	t, ok := tablesByName[name]
	if !ok {
		return table{}, fmt.Errorf("unknown table %q", name)
	}
	return t, nil
}
