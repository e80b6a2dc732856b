package donor

import "context"

type fakeNames struct {
	series string
	vars   map[string]string
	name   string
}

func (n *fakeNames) Next(_ context.Context, series string, vars map[string]string) (string, error) {
	n.series = series
	n.vars = vars
	return n.name, nil
}
