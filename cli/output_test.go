package cli

import (
	"bytes"
	"testing"
)

func TestOutput(t *testing.T) {
	var out, errOut bytes.Buffer
	o := &Output{Out: &out, Err: &errOut}

	o.Infof("%d seeds", 3)
	o.Successf("wrote %s", "proptest.ini")
	o.Warnf("line %d is malformed", 7)

	if got, want := out.String(), "3 seeds\n✓ wrote proptest.ini\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
	if got, want := errOut.String(), "warning: line 7 is malformed\n"; got != want {
		t.Errorf("stderr = %q, want %q", got, want)
	}
}
