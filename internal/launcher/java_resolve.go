package launcher

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/urixen-org/mclaunch/internal/java"
)

// minJavaMajor is the floor this launcher will accept from FindBest/the
// managed download path. Anything older can't run a modern client.
const minJavaMajor = 8

// resolveJava is the fallback chain spec.md §4.L step 2 calls for:
// an explicit override wins outright; failing that, detect an installed
// runtime; failing that, download one into the managed runtimes dir.
// Grounded on the teacher's launch.Launcher.checkJava/commitJavaPath.
func (l *Launcher) resolveJava(ctx context.Context) (string, error) {
	if l.opts.JavaPath != "" {
		return l.opts.JavaPath, nil
	}
	if l.opts.Resolved.JavaPath != "" {
		return l.opts.Resolved.JavaPath, nil
	}

	detector := java.NewDetector()
	if best := detector.FindBest(minJavaMajor); best != nil {
		l.sink.Debug(fmt.Sprintf("using detected java: %s", java.FormatInstallation(best)))
		return best.Path, nil
	}

	l.sink.Debug("no usable java detected, downloading a managed runtime")
	runtimesDir := filepath.Join(l.opts.Resolved.Root, "runtimes")
	downloader := java.NewDownloader()
	javaDir, err := downloader.DownloadRuntime(ctx, minJavaMajor, runtimesDir, func(msg string) { l.sink.Debug(msg) })
	if err != nil {
		return "", fmt.Errorf("downloading managed java runtime: %w", err)
	}

	javaPath, err := downloader.FindJavaExecutable(javaDir)
	if err != nil {
		return "", fmt.Errorf("locating java executable in %s: %w", javaDir, err)
	}
	return javaPath, nil
}
