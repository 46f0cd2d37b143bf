package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitCombined(t *testing.T) {
	code, id, err := SplitCombined("JRFL(1024)")
	require.NoError(t, err)
	require.Equal(t, "JRFL", code)
	require.Equal(t, int64(1024), id)

	code, id, err = SplitCombined("p 7 ( 33 )")
	require.NoError(t, err)
	require.Equal(t, "p 7", code)
	require.Equal(t, int64(33), id)

	for _, value := range []string{"JRFL", "JRFL(abc)", "JRFL()", ""} {
		_, _, err = SplitCombined(value)
		var malformed *MalformedFieldError
		require.ErrorAs(t, err, &malformed, value)
	}
}

func TestDerivePosition(t *testing.T) {
	require.Equal(t, "100:250", DerivePosition("Start: 100 Stop: 250. Link to NCBI sequence viewer"))
	require.Equal(t, "1:9719", DerivePosition("Start: 1  Stop: 9719. Link to NCBI sequence viewer"))
	require.Equal(t, "graphical view", DerivePosition("graphical view"))
	prefixed := "view Start: 1 Stop: 2. Link to NCBI sequence viewer"
	require.Equal(t, prefixed, DerivePosition(prefixed))
	require.Equal(t, "", DerivePosition(""))
}

func TestSecondaryId(t *testing.T) {
	id, err := SecondaryId("/cgi-bin/BASIC_BLAST/basic_blast_pg.cgi?SSAM_SE_id=149746", "_SE_id=")
	require.NoError(t, err)
	require.Equal(t, int64(149746), id)

	id, err = SecondaryId("basic_blast_pg.cgi?SSAM_SE_id=12&x=3", "_SE_id=")
	require.NoError(t, err)
	require.Equal(t, int64(12), id)

	var malformed *MalformedFieldError
	_, err = SecondaryId("basic_blast_pg.cgi?se=12", "_SE_id=")
	require.ErrorAs(t, err, &malformed)
	_, err = SecondaryId("basic_blast_pg.cgi?SSAM_SE_id=", "_SE_id=")
	require.ErrorAs(t, err, &malformed)
}
