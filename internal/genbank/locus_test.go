package genbank

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocus(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		want     Locus
		wantDate string
	}{
		{
			name: "current layout",
			line: "LOCUS       AB000096                3133 bp    DNA     linear   ROD 05-FEB-1999",
			want: Locus{Name: "AB000096", Length: "3133", MoleculeType: "DNA", Topology: "linear", Division: "ROD"},
			wantDate: "1999-02-05",
		},
		{
			name: "current layout single stranded",
			line: "LOCUS       BC000001                 812 bp ss-mRNA    linear   ROD 12-JAN-2004",
			want: Locus{Name: "BC000001", Length: "812", MoleculeType: "mRNA", Topology: "linear", Division: "ROD"},
			wantDate: "2004-01-12",
		},
		{
			name: "protein",
			line: "LOCUS       NP_000005               1474 aa            linear   PRI 11-APR-2021",
			want: Locus{Name: "NP_000005", Length: "1474", MoleculeType: "AA", Topology: "linear", Division: "PRI"},
			wantDate: "2021-04-11",
		},
		{
			name: "legacy layout",
			line: "LOCUS       AB000096     3133 bp    DNA             ROD       05-FEB-1999",
			want: Locus{Name: "AB000096", Length: "3133", MoleculeType: "DNA", Division: "ROD"},
			wantDate: "1999-02-05",
		},
		{
			name: "collapsed whitespace",
			line: "AB000096  3133 bp DNA linear ROD 05-FEB-1999",
			want: Locus{Name: "AB000096", Length: "3133", MoleculeType: "DNA", Topology: "linear", Division: "ROD"},
			wantDate: "1999-02-05",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLocus(tt.line)
			require.NoError(t, err)

			date, err := time.Parse("2006-01-02", tt.wantDate)
			require.NoError(t, err)
			tt.want.Date = date
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLocus_Invalid(t *testing.T) {
	for _, line := range []string{
		"LOCUS       AB000096",
		"LOCUS       AB000096 3133 bp DNA linear ROD 1999-02-05",
		"LOCUS       AB000096 many bp DNA linear ROD 05-FEB-1999",
		"LOCUS       AB000096 3133 nt DNA linear ROD 05-FEB-1999",
	} {
		_, err := ParseLocus(line)
		var fe *FormatError
		assert.ErrorAs(t, err, &fe, line)
	}
}
