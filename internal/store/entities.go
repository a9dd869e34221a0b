package store

// Vocabulary names used by the loader.
const (
	VocabLogicalDB      = "Logical DB"
	VocabStrain         = "Strain"
	VocabAlleleType     = "Allele Type"
	VocabAlleleStatus   = "Allele Status"
	VocabInheritance    = "Inheritance Mode"
	VocabMutation       = "Molecular Mutation"
	VocabSeqTagMethod   = "Sequence Tag Method"
	VocabVectorEnd      = "Gene Trap Vector End"
	VocabReverseComp    = "Reverse Complement"
	VocabCreator        = "Cell Line Creator"
	VocabVector         = "Cell Line Vector"
	VocabVectorType     = "Cell Line Vector Type"
	VocabDerivationType = "Cell Line Derivation Type"
	VocabAssocQualifier = "Sequence Allele Qualifier"
)

// Accession object types.
const (
	ObjectSequence = "Sequence"
	ObjectCellLine = "Cell Line"
	ObjectAllele   = "Allele"
)

// Sequence status values.
const (
	SequenceActive    = "Active"
	SequenceNotLoaded = "Not Loaded"
)

// Entity is a persisted state object that can be written as one row.
type Entity interface {
	Row() Row
}

// Term is one controlled-vocabulary term.
type Term struct {
	Key          int64
	Vocab        string
	Term         string
	Abbreviation string
}

func (t Term) Row() Row {
	return insert(TableVocabTerm, t.Key, t.Vocab, t.Term, t.Abbreviation)
}

// CellLine is a parent or mutant cell line.
type CellLine struct {
	Key           int64
	Name          string
	StrainKey     int64
	DerivationKey int64 // 0 for parent cell lines
	IsMutant      bool
	CreatedBy     string
	CreationDate  string
}

func (c CellLine) Row() Row {
	return insert(TableCellLine, c.Key, c.Name, c.StrainKey, nullKey(c.DerivationKey),
		boolInt(c.IsMutant), c.CreatedBy, c.CreationDate)
}

// Derivation describes how mutant cell lines were made from a parent.
type Derivation struct {
	Key               int64
	Name              string
	ParentKey         int64
	CreatorKey        int64
	VectorKey         int64
	VectorTypeKey     int64
	DerivationTypeKey int64
	CreatedBy         string
}

func (d Derivation) Row() Row {
	return insert(TableDerivation, d.Key, d.Name, d.ParentKey, d.CreatorKey,
		d.VectorKey, d.VectorTypeKey, d.DerivationTypeKey, d.CreatedBy)
}

// Accession is an external identifier of a sequence, cell line or allele
// within one logical database.
type Accession struct {
	Key          int64
	AccID        string
	LogicalDBKey int64
	ObjectKey    int64
	ObjectType   string
	Preferred    bool
	CreatedBy    string
}

func (a Accession) Row() Row {
	return insert(TableAccession, a.Key, a.AccID, a.LogicalDBKey, a.ObjectKey,
		a.ObjectType, boolInt(a.Preferred), a.CreatedBy)
}

// Allele is a curated allele.
type Allele struct {
	Key              int64
	Symbol           string
	Name             string
	StrainKey        int64
	TypeKey          int64
	StatusKey        int64
	InheritanceKey   int64
	CreatedBy        string
	CreationDate     string
	ModificationDate string
}

func (a Allele) Row() Row {
	return insert(TableAllele, a.Key, a.Symbol, a.Name, a.StrainKey, a.TypeKey,
		a.StatusKey, a.InheritanceKey, a.CreatedBy, a.CreationDate, a.ModificationDate)
}

// Synonym is an alternative allele symbol.
type Synonym struct {
	Key       int64
	AlleleKey int64
	Synonym   string
}

func (s Synonym) Row() Row {
	return insert(TableAlleleSynonym, s.Key, s.AlleleKey, s.Synonym)
}

// AlleleCellLine links an allele to a mutant cell line.
type AlleleCellLine struct {
	Key         int64
	AlleleKey   int64
	CellLineKey int64
}

func (a AlleleCellLine) Row() Row {
	return insert(TableAlleleCellLine, a.Key, a.AlleleKey, a.CellLineKey)
}

// AlleleMutation links an allele to a molecular mutation term.
type AlleleMutation struct {
	Key         int64
	AlleleKey   int64
	MutationKey int64
}

func (a AlleleMutation) Row() Row {
	return insert(TableAlleleMutation, a.Key, a.AlleleKey, a.MutationKey)
}

// ReferenceAssoc links an allele to a J number or PubMed ID.
type ReferenceAssoc struct {
	Key       int64
	AlleleKey int64
	RefID     string
	AssocType string
}

func (r ReferenceAssoc) Row() Row {
	return insert(TableReferenceAssoc, r.Key, r.AlleleKey, r.RefID, r.AssocType)
}

// Sequence is a GenBank sequence record.
type Sequence struct {
	Key              int64
	AccID            string
	Version          string
	Description      string
	Length           int64
	Division         string
	MoleculeType     string
	Organism         string
	Status           string
	Provider         string
	SeqDate          string
	CreatedBy        string
	ModificationDate string
}

func (s Sequence) Row() Row {
	return insert(TableSequence, s.Key, s.AccID, s.Version, s.Description, s.Length,
		s.Division, s.MoleculeType, s.Organism, s.Status, s.Provider, s.SeqDate,
		s.CreatedBy, s.ModificationDate)
}

// SeqAlleleAssoc links a sequence to an allele.
type SeqAlleleAssoc struct {
	Key          int64
	SequenceKey  int64
	AlleleKey    int64
	QualifierKey int64
}

func (a SeqAlleleAssoc) Row() Row {
	return insert(TableSeqAlleleAssoc, a.Key, a.SequenceKey, a.AlleleKey, a.QualifierKey)
}

// SeqMarkerAssoc links a sequence to a marker.
type SeqMarkerAssoc struct {
	Key          int64
	SequenceKey  int64
	MarkerSymbol string
}

func (a SeqMarkerAssoc) Row() Row {
	return insert(TableSeqMarkerAssoc, a.Key, a.SequenceKey, a.MarkerSymbol)
}

// GeneTrap holds gene-trap attributes of a sequence.
type GeneTrap struct {
	SequenceKey    int64
	TagMethodKey   int64 // 0 when the method is unknown
	VectorEndKey   int64
	ReverseCompKey int64
	GoodHitCount   int64
	CreatedBy      string
}

func (g GeneTrap) Row() Row {
	return insert(TableSeqGeneTrap, g.SequenceKey, nullKey(g.TagMethodKey), g.VectorEndKey,
		g.ReverseCompKey, g.GoodHitCount, g.CreatedBy)
}

// insert builds an insert row whose values follow the table's column order.
func insert(table string, values ...any) Row {
	return Row{Op: OpInsert, Table: table, Columns: tablesByName[table].columnNames(), Values: values}
}

func nullKey(k int64) any {
	if k == 0 {
		return nil
	}
	return k
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
