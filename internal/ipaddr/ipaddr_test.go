package ipaddr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyIPv4(t *testing.T) {
	valid := []string{
		"0.0.0.0",
		"127.0.0.1",
		"192.168.1.1",
		"203.0.113.7",
		"255.255.255.255",
		"10.0.0.1",
	}
	for _, s := range valid {
		assert.Equal(t, TypeIPv4, Classify(s), s)
	}
}

func TestClassifyIPv6(t *testing.T) {
	valid := []string{
		"::",
		"::1",
		"2001:db8::1",
		"2001:DB8::1",
		"fe80::1",
		"1:2:3:4:5:6:7:8",
		"1:2:3:4:5:6:7::",
		"::ffff:0:0",
		"2001:0db8:0000:0000:0000:0000:0000:0001",
	}
	for _, s := range valid {
		assert.Equal(t, TypeIPv6, Classify(s), s)
	}
}

func TestClassifyInvalid(t *testing.T) {
	invalid := []string{
		"",
		"256.1.1.1",
		"1.2.3",
		"1.2.3.4.5",
		"1.2.3.1000",
		"a.b.c.d",
		"192.168.1.-1",
		":::",
		"1::2::3",
		"12345::",
		"g::1",
		"1:2:3:4:5:6:7:8:9",
		"::1:2:3:4:5:6:7:8",
		"not an address",
		"203.0.113.7:443",
	}
	for _, s := range invalid {
		assert.Equal(t, TypeInvalid, Classify(s), s)
	}
}

func TestValidateTrimsWhitespace(t *testing.T) {
	v := Validate("  203.0.113.7 ")
	require.True(t, v.Valid)
	assert.Equal(t, TypeIPv4, v.Type)
	assert.NoError(t, v.Err)
}

func TestValidateInvalidNamesBothForms(t *testing.T) {
	v := Validate("299.0.0.1")
	require.False(t, v.Valid)
	require.Error(t, v.Err)
	assert.Contains(t, v.Err.Error(), "IPv4")
	assert.Contains(t, v.Err.Error(), "IPv6")
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"203.0.113.7": "203.0.113.7",
		"2001:DB8::1": "2001:db8::1",
		"2001:0db8:0000:0000:0000:0000:0000:0001": "2001:db8::1",
		"0:0:0:0:0:0:0:1":  "::1",
		"0:0:0:0:0:0:0:0":  "::",
		"::":               "::",
		"1:2:3:4:5:6:7:8":  "1:2:3:4:5:6:7:8",
		"fe80:0:0:0:1:0:0:1": "fe80::1:0:0:1",
		"  2001:db8::1 ":   "2001:db8::1",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestNormalizeLeavesInvalidAlone(t *testing.T) {
	assert.Equal(t, "not-an-ip", Normalize("not-an-ip"))
}
