package cmd

import (
	"github.com/stretchr/testify/mock"

	"github.com/mouse-blink/portyp/internal/domain"
	m "github.com/mouse-blink/portyp/internal/model"
)

type mockWorkflow struct {
	mock.Mock
}

func (w *mockWorkflow) Run(args domain.RunArgs) (m.Summary, error) {
	ret := w.Called(args)

	return ret.Get(0).(m.Summary), ret.Error(1)
}
