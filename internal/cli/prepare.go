package cli

import (
	"errors"

	"github.com/charmbracelet/log"

	"github.com/shinji-kodama/java-in-docker/internal/classpath"
	"github.com/shinji-kodama/java-in-docker/internal/config"
	"github.com/shinji-kodama/java-in-docker/internal/model"
)

// resolveClasspath assembles the container classpath for cfg.
//
// Every unmapped entry is logged as a warning. With fail_on_unmapped the
// unmapped entries become an ExitUnresolvedClasspath error.
func resolveClasspath(cfg *config.Config, logger *log.Logger) (model.ClasspathResolution, error) {
	deps, found, err := cfg.Dependencies()
	if err != nil {
		return model.ClasspathResolution{}, model.WrapCLIError(model.ExitIOError,
			"failed to read the runtime classpath listing", err)
	}
	if !found {
		logger.Warn("Runtime classpath listing not found, only explicit --classpath entries are used",
			"file", cfg.ClasspathFile)
	}

	res := classpath.Assemble(cfg.ClasspathInput(deps))
	for _, p := range res.Unmapped {
		logger.Warn("cannot map classpath entry", "path", p)
	}

	if cfg.FailOnUnmapped {
		if err := classpath.ResolutionError(res); err != nil {
			return res, model.WrapCLIError(model.ExitUnresolvedClasspath,
				"classpath entries outside the mounted directories", err)
		}
	}
	return res, nil
}

// resolveMainClass returns the main class for cfg, which may be empty.
func resolveMainClass(cfg *config.Config, logger *log.Logger) (string, error) {
	mc, err := cfg.ResolveMainClass()
	if err != nil {
		var ioErr *model.IOFailure
		if errors.As(err, &ioErr) {
			return "", model.WrapCLIError(model.ExitIOError, "failed to detect the main class", err)
		}
		return "", err
	}
	if mc.Name != "" {
		logger.Debug("Main class", "name", mc.Name, "source", mc.Source)
	}
	return mc.Name, nil
}

// prepareInvocation builds the run invocation for cfg: main class,
// classpath and mounts. Both mount sources must already exist.
func prepareInvocation(cfg *config.Config, logger *log.Logger) (model.RunInvocation, error) {
	if err := cfg.ValidateMounts(); err != nil {
		return model.RunInvocation{}, err
	}

	mainClass, err := resolveMainClass(cfg, logger)
	if err != nil {
		return model.RunInvocation{}, err
	}

	res, err := resolveClasspath(cfg, logger)
	if err != nil {
		return model.RunInvocation{}, err
	}

	return cfg.Invocation(res, mainClass), nil
}
