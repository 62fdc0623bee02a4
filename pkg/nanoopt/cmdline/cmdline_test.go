package cmdline

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stefanofago73/nano-optimizer/pkg/nanoopt/types"
)

func baseParams() types.TuningParameters {
	return types.TuningParameters{
		MinHeapMB:      200,
		MaxHeapMB:      350,
		MaxRAMMB:       768,
		ThreadStackKB:  256,
		ConfigLocation: "classpath:/application.properties",
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		preTouch bool
		windows  bool
		want     string
	}{
		{
			name: "unix",
			want: "-Xms200m -Xmx350m -XX:MaxRAM=768m -Xss256k -noverify -XX:TieredStopAtLevel=1 " +
				"-Dspring.jmx.enabled=false -Dspring.config.location=classpath:/application.properties " +
				"-Djava.security.egd=file:/dev/./urandom",
		},
		{
			name:    "windows",
			windows: true,
			want: "-Xms200m -Xmx350m -XX:MaxRAM=768m -Xss256k -noverify -XX:TieredStopAtLevel=1 " +
				"-Dspring.jmx.enabled=false -Dspring.config.location=classpath:/application.properties " +
				"-Djava.security.egd=file:/dev/urandom",
		},
		{
			name:     "pre-touch",
			preTouch: true,
			want: "-Xms200m -Xmx350m -XX:MaxRAM=768m -Xss256k -noverify -XX:TieredStopAtLevel=1 " +
				"-Dspring.jmx.enabled=false -Dspring.config.location=classpath:/application.properties " +
				"-XX:+AlwaysPreTouch -Djava.security.egd=file:/dev/./urandom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseParams()
			p.PreTouch = tt.preTouch
			assert.Equal(t, tt.want, Build(p, tt.windows))
		})
	}
}

func TestBuild_Spacing(t *testing.T) {
	got := Build(baseParams(), false)
	assert.False(t, strings.HasPrefix(got, " "))
	assert.False(t, strings.HasSuffix(got, " "))
	assert.NotContains(t, got, "  ")
}

func TestBuild_LocationVerbatim(t *testing.T) {
	p := baseParams()
	p.ConfigLocation = "file:/opt/my app/conf.yml"
	assert.Contains(t, Build(p, false), "-Dspring.config.location=file:/opt/my app/conf.yml ")
}

func TestArgs(t *testing.T) {
	args := Args(baseParams(), false)
	assert.Len(t, args, 9)
	assert.Equal(t, "-Xms200m", args[0])
	assert.Equal(t, "-Djava.security.egd=file:/dev/./urandom", args[len(args)-1])
}

func TestIsWindows(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{name: "Windows 11", want: true},
		{name: "WINDOWS", want: true},
		{name: "win32", want: true},
		{name: "Linux", want: false},
		{name: "Mac OS X", want: false},
		{name: "", want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsWindows(tt.name), tt.name)
	}
}

func TestOSName(t *testing.T) {
	none := func() string { return "" }

	assert.Equal(t, "Mac OS X", osName("darwin", none))
	assert.False(t, IsWindows(osName("darwin", none)), "darwin must not be classified as Windows")
	assert.Equal(t, "Windows", osName("windows", none))
	assert.Equal(t, "Linux", osName("linux", none))
	assert.Equal(t, "dragonfly-platform", osName("dragonfly", func() string { return "dragonfly-platform" }))
	assert.Equal(t, "plan9", osName("plan9", none))
}

func TestHostOSName(t *testing.T) {
	first := HostOSName()
	assert.Equal(t, first, HostOSName())
	assert.Equal(t, runtime.GOOS == "windows", IsWindows(first))
}

func TestTarget(t *testing.T) {
	assert.Equal(t, "Windows Server 2022", Target("Windows Server 2022"))
	assert.Equal(t, HostOSName(), Target(""))
}
