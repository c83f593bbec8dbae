package csvio

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assettrack/internal/types"
)

type fakeCreator struct {
	created  []*types.Asset
	errByTag map[string]error
}

func (f *fakeCreator) Create(_ context.Context, a *types.Asset) (*types.Asset, error) {
	if err, ok := f.errByTag[a.AssetTag]; ok {
		return nil, err
	}
	f.created = append(f.created, a)
	return a, nil
}

type fakeTagSource struct {
	next  map[types.AssetType]string
	calls int
}

func (f *fakeTagSource) NextAssetTag(_ context.Context, t types.AssetType) (string, error) {
	f.calls++
	return f.next[t], nil
}

func newImportFixture() (*Importer, *fakeCreator, *fakeTagSource) {
	creator := &fakeCreator{errByTag: map[string]error{}}
	tags := &fakeTagSource{next: map[types.AssetType]string{
		types.AssetLaptop:  "LAP-009",
		types.AssetMonitor: "MON-003",
	}}
	return NewImporter(creator, tags), creator, tags
}

func TestImport_CreatesRows(t *testing.T) {
	im, creator, _ := newImportFixture()

	input := strings.Join([]string{
		"asset_tag,asset_type,name,serial_number,purchase_date,purchase_price,warranty_end",
		"LAP-001,laptop,MacBook Pro,SN-1,2024-06-01,1499.99,2027-06-01",
		"MON-001,monitor,Dell U2723,SN-2,,,",
	}, "\n")

	report, err := im.Import(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 0, report.Skipped)
	assert.Empty(t, report.Errors)

	require.Len(t, creator.created, 2)
	first := creator.created[0]
	assert.Equal(t, "LAP-001", first.AssetTag)
	assert.Equal(t, types.AssetLaptop, first.AssetType)
	require.NotNil(t, first.PurchasePrice)
	assert.Equal(t, 1499.99, *first.PurchasePrice)
	require.NotNil(t, first.WarrantyEnd)
	assert.Equal(t, "2027-06-01", first.WarrantyEnd.Format(dateLayout))

	second := creator.created[1]
	assert.Nil(t, second.PurchaseDate)
	assert.Nil(t, second.PurchasePrice)
}

func TestImport_GeneratesMissingTags(t *testing.T) {
	im, creator, tags := newImportFixture()

	input := "asset_type,name\nlaptop,Spare MacBook\n"
	report, err := im.Import(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, tags.calls)
	require.Len(t, creator.created, 1)
	assert.Equal(t, "LAP-009", creator.created[0].AssetTag)
}

func TestImport_SkipsDuplicates(t *testing.T) {
	im, creator, _ := newImportFixture()
	creator.errByTag["LAP-001"] = types.NewAppError(types.ErrCodeConflictAssetTagExists, "asset tag already exists", nil)
	creator.errByTag["LAP-002"] = types.NewAppError(types.ErrCodeConflictSerialExists, "serial number already exists", nil)

	input := strings.Join([]string{
		"asset_tag,asset_type,name",
		"LAP-001,laptop,Dup Tag",
		"LAP-002,laptop,Dup Serial",
		"LAP-003,laptop,Fresh",
	}, "\n")

	report, err := im.Import(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 2, report.Skipped)
	assert.Empty(t, report.Errors)
}

func TestImport_ReportsBadRowsAndContinues(t *testing.T) {
	im, _, _ := newImportFixture()

	input := strings.Join([]string{
		"asset_tag,asset_type,name,purchase_date",
		"LAP-001,toaster,Not A Type,",
		"LAP-002,laptop,,",
		"LAP-003,laptop,Bad Date,June 1st",
		"LAP-004,laptop,Good One,2024-06-01",
	}, "\n")

	report, err := im.Import(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 4, report.Processed)
	assert.Equal(t, 1, report.Created)
	require.Len(t, report.Errors, 3)
	assert.Equal(t, 2, report.Errors[0].Row)
	assert.Contains(t, report.Errors[0].Message, "asset_type")
	assert.Equal(t, 3, report.Errors[1].Row)
	assert.Contains(t, report.Errors[1].Message, "name")
	assert.Equal(t, 4, report.Errors[2].Row)
	assert.Contains(t, report.Errors[2].Message, "purchase_date")
}

func TestImport_MissingRequiredColumn(t *testing.T) {
	im, _, _ := newImportFixture()

	_, err := im.Import(context.Background(), strings.NewReader("asset_tag,name\nLAP-001,No Type\n"))
	require.Error(t, err)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeValidationInvalidField, appErr.Code)
	assert.Contains(t, appErr.Message, "asset_type")
}

func TestImport_IgnoresExportOnlyColumns(t *testing.T) {
	im, creator, _ := newImportFixture()

	input := strings.Join([]string{
		"asset_tag,asset_type,name,status,created_at",
		"LAP-001,laptop,Round Trip,decommissioned,2024-06-02T09:00:00Z",
	}, "\n")

	report, err := im.Import(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 1, report.Created)
	require.Len(t, creator.created, 1)
	// status column is read-only: new assets always start available.
	assert.Equal(t, types.AssetStatus(""), creator.created[0].Status)
}
