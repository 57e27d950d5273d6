package envutil_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phillip-england/hrms/internal/envutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, envutil.WriteDotEnv(path, map[string]string{
		"HRMS_TEST_BASE_URL": "http://backend:8000",
		"HRMS_TEST_PRESET":   "from-file",
	}, false))

	err := envutil.WriteDotEnv(path, map[string]string{"X": "y"}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	t.Setenv("HRMS_TEST_PRESET", "from-env")
	require.NoError(t, envutil.LoadDotEnv(path))
	t.Cleanup(func() { _ = os.Unsetenv("HRMS_TEST_BASE_URL") })

	assert.Equal(t, "http://backend:8000", os.Getenv("HRMS_TEST_BASE_URL"))
	assert.Equal(t, "from-env", os.Getenv("HRMS_TEST_PRESET"))
}

func TestLoadDotEnv_MissingFileIsIgnored(t *testing.T) {
	assert.NoError(t, envutil.LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}

func TestTypedLookups(t *testing.T) {
	t.Setenv("HRMS_TEST_INT", "12")
	t.Setenv("HRMS_TEST_BAD_INT", "-3")
	t.Setenv("HRMS_TEST_SECONDS", "45")
	t.Setenv("HRMS_TEST_DURATION", "1m30s")
	t.Setenv("HRMS_TEST_BOOL", "true")

	assert.Equal(t, 12, envutil.Int("HRMS_TEST_INT", 1))
	assert.Equal(t, 1, envutil.Int("HRMS_TEST_BAD_INT", 1))
	assert.Equal(t, 45*time.Second, envutil.Duration("HRMS_TEST_SECONDS", time.Second))
	assert.Equal(t, 90*time.Second, envutil.Duration("HRMS_TEST_DURATION", time.Second))
	assert.Equal(t, time.Second, envutil.Duration("HRMS_TEST_UNSET", time.Second))
	assert.True(t, envutil.Bool("HRMS_TEST_BOOL", false))
	assert.Equal(t, "fallback", envutil.String("HRMS_TEST_UNSET", "fallback"))
}
