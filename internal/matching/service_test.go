package matching_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/minhasfinancas/internal/matching"
)

func TestService_Learn(t *testing.T) {
	tests := []struct {
		name      string
		pattern   string
		preferred string
		setupMock func(m *matching.MockRepository)
		wantErr   error
	}{
		{
			name:      "Success",
			pattern:   " PIX ENEL ",
			preferred: "Conta de luz",
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().
					SaveMapping(gomock.Any(), &matching.Mapping{UserID: 3, Pattern: "PIX ENEL", Preferred: "Conta de luz"}).
					DoAndReturn(func(_ context.Context, m *matching.Mapping) error {
						m.ID = 11
						return nil
					})
			},
		},
		{name: "EmptyPattern", pattern: "  ", preferred: "Conta de luz", wantErr: matching.ErrEmptyPattern},
		{name: "EmptyDescription", pattern: "ENEL", preferred: "", wantErr: matching.ErrEmptyDescription},
		{name: "PatternTooLong", pattern: strings.Repeat("p", 151), preferred: "Conta de luz", wantErr: matching.ErrPatternTooLong},
		{name: "DescriptionTooLong", pattern: "ENEL", preferred: strings.Repeat("d", 101), wantErr: matching.ErrDescriptionTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := matching.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := matching.NewService(repo).Learn(context.Background(), 3, tt.pattern, tt.preferred)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, int64(11), got.ID)
		})
	}
}

func TestService_Suggest_Blank(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	got, err := matching.NewService(matching.NewMockRepository(ctrl)).Suggest(context.Background(), 3, "  ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestService_List_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := matching.NewMockRepository(ctrl)
	repo.EXPECT().ListMappings(gomock.Any(), int64(3)).Return(nil, nil)

	got, err := matching.NewService(repo).List(context.Background(), 3)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestService_Rewrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := matching.NewMockRepository(ctrl)
	repo.EXPECT().FindMatch(gomock.Any(), int64(3), "PIX ENEL 0123").Return("Conta de luz", nil)
	repo.EXPECT().FindMatch(gomock.Any(), int64(3), "Mercado").Return("", nil)
	repo.EXPECT().FindMatch(gomock.Any(), int64(3), "TED 999").Return("", errors.New("db error"))

	a, b, c := "PIX ENEL 0123", "Mercado", "TED 999"

	n := matching.NewService(repo).Rewrite(context.Background(), 3, []*string{&a, &b, &c})

	assert.Equal(t, 1, n)
	assert.Equal(t, "Conta de luz", a)
	assert.Equal(t, "Mercado", b)
	assert.Equal(t, "TED 999", c)
}
