package build

// Args constructs the `docker build` argument list for the plan.
func (p Plan) Args() []string {
	// Always start from fresh base images and compress the context.
	args := []string{"build", "--pull", "--compress"}

	if p.Squash {
		args = append(args, "--squash")
	}
	if p.Quiet {
		args = append(args, "--quiet")
	}

	for _, a := range p.BuildArgs {
		args = append(args, "--build-arg", a.String())
	}
	for _, l := range p.Labels {
		args = append(args, "--label", l.Key+"="+l.Value)
	}

	if p.CacheEnabled() {
		for _, ref := range p.CacheFrom {
			args = append(args, "--cache-from", ref)
		}
	} else {
		args = append(args, "--no-cache")
	}

	args = append(args, "--tag", p.Tag, "--file", p.Dockerfile)

	context := p.ContextDir
	if context == "" {
		context = "."
	}
	args = append(args, context)

	return args
}
