package genetrap

import (
	"strconv"
	"strings"

	"github.com/inodb/gtload/internal/alo"
	"github.com/inodb/gtload/internal/genbank"
	"github.com/inodb/gtload/internal/store"
)

// Logical databases of gene-trap sequences and their sequence tags.
const (
	SequenceLogicalDB = "GenBank"
	SeqTagLogicalDB   = "Gene Trap Sequence Tag"
)

// Template placeholders.
const (
	placeholderMCL     = "~~MCL~~"
	placeholderLabCode = "~~LABCODE~~"
	placeholderLabName = "~~LABNAME~~"
)

// Config holds the load parameters that shape raw input bundles.
type Config struct {
	Provider        string
	JNumber         string
	AlleleType      string
	AlleleStatus    string
	InheritanceMode string
	SymbolTemplate  string
	NameTemplate    string
	Mutation        string
	Qualifier       string
	DerivationType  string
	VectorType      string
	Methods         string
}

// DefaultConfig returns the dbGSS gene-trap defaults.
func DefaultConfig() Config {
	return Config{
		Provider:        "dbGSS Gene Trap",
		JNumber:         "J:85004",
		AlleleType:      "Gene trapped",
		AlleleStatus:    "Approved",
		InheritanceMode: "Not Applicable",
		SymbolTemplate:  "Gt(" + placeholderMCL + ")" + placeholderLabCode,
		NameTemplate:    "gene trap " + placeholderMCL + ", " + placeholderLabName,
		Mutation:        "Insertion",
		Qualifier:       NotSpecified,
		DerivationType:  "Gene trapped",
		VectorType:      "Gene trap",
		Methods: "5' race=5' RACE,3' race=3' RACE,inverse pcr=Inverse PCR,splinkerette=Splinkerette," +
			"spk=Splinkerette,plasmid rescue=Plasmid Rescue,genomic pcr=Genomic PCR",
	}
}

// UnknownCreatorError reports a record whose creator is not recognized.
type UnknownCreatorError struct {
	SeqID string
}

func (e *UnknownCreatorError) Error() string {
	return "unrecognized gene trap creator in " + e.SeqID
}

// Record returns the human-readable record context for curation reports.
func (e *UnknownCreatorError) Record() string {
	return e.SeqID + " (COMMENT)"
}

// HitCounts returns the good hit count of a sequence.
type HitCounts interface {
	Count(seqID string) int64
}

// Interpreter turns parsed GenBank records into gene-trap raw input
// bundles. It holds no per-record state and is safe for concurrent use.
type Interpreter struct {
	cfg     Config
	methods *MethodMatcher
	hits    HitCounts
}

// NewInterpreter creates an interpreter. hits may be nil, in which case
// every hit count is 0.
func NewInterpreter(cfg Config, hits HitCounts) (*Interpreter, error) {
	methods, err := ParseMethods(cfg.Methods)
	if err != nil {
		return nil, err
	}
	return &Interpreter{cfg: cfg, methods: methods, hits: hits}, nil
}

// Interpret builds the raw input bundle of one record.
func (ip *Interpreter) Interpret(rec *genbank.Record) (*alo.RawInput, error) {
	seqID := rec.PrimaryAcc
	creator := DetectCreator(rec.Comment)
	if creator == UnknownCreator {
		return nil, &UnknownCreatorError{SeqID: seqID}
	}

	tag, err := seqTagID(rec, creator)
	if err != nil {
		return nil, err
	}

	var notes []string
	method, ok := ip.methods.Match(methodText(rec, creator, tag))
	if !ok {
		notes = append(notes, "no sequence tag method found for "+tag)
	}

	mclID, end, ok := creator.SplitTag(tag, method)
	if !ok {
		return nil, &NoVectorEndError{SeqID: seqID, TagID: tag, Creator: creator}
	}

	vector, ok := vectorName(rec, creator)
	if !ok {
		notes = append(notes, "vector not specified for cell line "+mclID)
	}
	parent := rec.Source.Get("cell_line")
	if parent == "" {
		parent = NotSpecified
	}

	length, err := strconv.ParseInt(rec.Locus.Length, 10, 64)
	if err != nil {
		return nil, &genbank.FormatError{ID: seqID, Section: "LOCUS", Message: "invalid length " + rec.Locus.Length}
	}

	expand := strings.NewReplacer(
		placeholderMCL, mclID,
		placeholderLabCode, creator.LabCode(),
		placeholderLabName, creator.LabName(),
	).Replace

	in := &alo.RawInput{
		SeqID:   seqID,
		RawText: rec.Raw,
		Creator: creator.String(),
		Allele: alo.AlleleRaw{
			Symbol:          expand(ip.cfg.SymbolTemplate),
			Name:            expand(ip.cfg.NameTemplate),
			Type:            ip.cfg.AlleleType,
			Status:          ip.cfg.AlleleStatus,
			InheritanceMode: ip.cfg.InheritanceMode,
		},
		CellLines: []alo.CellLineRaw{{
			ID:             mclID,
			Creator:        creator.String(),
			LabName:        creator.LabName(),
			ParentCellLine: parent,
			Vector:         vector,
			VectorType:     ip.cfg.VectorType,
			DerivationType: ip.cfg.DerivationType,
		}},
		Accessions: []alo.AccessionRaw{
			{ID: mclID, LogicalDB: creator.CellLineLogicalDB(), ObjectType: store.ObjectCellLine},
			{ID: tag, LogicalDB: SeqTagLogicalDB, ObjectType: store.ObjectSequence},
		},
		SeqAssoc: alo.SeqAssocRaw{SeqID: seqID, Qualifier: ip.cfg.Qualifier},
		GeneTrap: alo.GeneTrapRaw{
			SeqTagID:     tag,
			Method:       method,
			VectorEnd:    end,
			ReverseComp:  creator.ReverseComplement(end),
			GoodHitCount: ip.hitCount(seqID),
		},
		Sequence: alo.SequenceRaw{
			AccID:        seqID,
			Secondary:    rec.SecondaryAccs,
			Version:      rec.SeqVersion,
			Description:  rec.Definition,
			Length:       length,
			Division:     rec.Locus.Division,
			MoleculeType: rec.Locus.MoleculeType,
			Organism:     rec.Organism,
			Date:         rec.Locus.Date,
			Provider:     ip.cfg.Provider,
			LogicalDB:    SequenceLogicalDB,
		},
		Notes: notes,
	}
	if ip.cfg.Mutation != "" {
		in.Mutations = []string{ip.cfg.Mutation}
	}
	in.References = append(in.References, alo.ReferenceRaw{ID: ip.cfg.JNumber, Type: alo.RefLoad})
	for _, id := range rec.PubMedIDs {
		in.References = append(in.References, alo.ReferenceRaw{ID: id, Type: alo.RefOriginal})
	}
	return in, nil
}

func (ip *Interpreter) hitCount(seqID string) int64 {
	if ip.hits == nil {
		return 0
	}
	return ip.hits.Count(seqID)
}

func seqTagID(rec *genbank.Record, c Creator) (string, error) {
	var tag, section string
	switch c.profile().tag {
	case fromClone:
		tag, section = strings.TrimSpace(rec.Source.Get("clone")), "SOURCE"
	default:
		if f := strings.Fields(rec.Definition); len(f) > 0 {
			tag = f[0]
		}
		section = "DEFINITION"
	}
	if tag == "" {
		return "", &genbank.FormatError{ID: rec.PrimaryAcc, Section: section, Message: "no sequence tag ID"}
	}
	return tag, nil
}

func methodText(rec *genbank.Record, c Creator, tag string) string {
	switch c.profile().method {
	case methodFromNote:
		return rec.Source.Get("note")
	case methodFromTagSuffix:
		if i := strings.LastIndexByte(tag, '.'); i >= 0 {
			return tag[i+1:]
		}
		return tag
	default:
		return rec.Comment
	}
}

// vectorName returns the vector of the record, or NotSpecified and false.
func vectorName(rec *genbank.Record, c Creator) (string, bool) {
	var v string
	switch c.profile().vector {
	case vectorFromNoteMarker:
		note := rec.Source.Get("note")
		if i := strings.Index(note, vectorMarker); i >= 0 {
			v = note[i+len(vectorMarker):]
			if j := strings.IndexAny(v, ";,"); j >= 0 {
				v = v[:j]
			}
		}
	case vectorFromSecondSource:
		v = rec.SecondSource.Get("note")
	default:
		v = rec.Source.Get("note")
	}
	if v = strings.TrimSpace(v); v == "" {
		return NotSpecified, false
	}
	return v, true
}

// Seed returns the vocabulary terms and parent cell line that records
// interpreted with this configuration resolve against.
func (ip *Interpreter) Seed() *store.Seed {
	ldbs := []string{SequenceLogicalDB, SeqTagLogicalDB}
	var creators []string
	for _, c := range Creators() {
		ldbs = append(ldbs, c.CellLineLogicalDB())
		creators = append(creators, c.String())
	}
	return &store.Seed{
		Vocabularies: map[string][]string{
			store.VocabLogicalDB:      ldbs,
			store.VocabCreator:        creators,
			store.VocabAlleleType:     {ip.cfg.AlleleType},
			store.VocabAlleleStatus:   {ip.cfg.AlleleStatus},
			store.VocabInheritance:    {ip.cfg.InheritanceMode},
			store.VocabMutation:       {ip.cfg.Mutation},
			store.VocabAssocQualifier: {ip.cfg.Qualifier},
			store.VocabDerivationType: {ip.cfg.DerivationType},
			store.VocabVectorType:     {ip.cfg.VectorType},
			store.VocabVector:         {NotSpecified},
			store.VocabSeqTagMethod:   ip.methods.Terms(),
			store.VocabVectorEnd:      {Upstream, Downstream, VectorEndNotAppl},
			store.VocabReverseComp:    {ReverseCompYes, ReverseCompNo},
			store.VocabStrain:         {NotSpecified},
		},
		ParentCellLines: []store.ParentSeed{{Name: NotSpecified, Strain: NotSpecified}},
	}
}
