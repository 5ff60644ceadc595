package deploy

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/osvaldoandrade/movectl/internal/domain"
)

const (
	testSender = "0x00000000000000000000000000000000000000000000000000000000000000aa"
	testCommit = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

	testGasCoin  = "0x9a5"
	testGasPrice = 750
)

var testDigest = []byte{1, 2, 3}

type compileCall struct {
	path string
	opts domain.BuildOptions
}

type fakeCompiler struct {
	artifact domain.BuildArtifact
	err      error
	onBuild  func(path string)
	calls    []compileCall
}

func (f *fakeCompiler) Build(ctx context.Context, packagePath string, opts domain.BuildOptions) (domain.BuildArtifact, error) {
	f.calls = append(f.calls, compileCall{path: packagePath, opts: opts})
	if f.onBuild != nil {
		f.onBuild(packagePath)
	}
	if f.err != nil {
		return domain.BuildArtifact{}, f.err
	}
	return f.artifact, nil
}

// fakeManifests models Move.toml, its backup and the network copy of each
// package as strings.
type fakeManifests struct {
	manifest    map[string]string
	network     map[string]string
	backup      map[string]string
	publishedAt map[string]string
	pinned      []string
	restoreErr  map[string]error
}

func newFakeManifests(packages ...string) *fakeManifests {
	f := &fakeManifests{
		manifest:    map[string]string{},
		network:     map[string]string{},
		backup:      map[string]string{},
		publishedAt: map[string]string{},
		restoreErr:  map[string]error{},
	}
	for _, pkg := range packages {
		f.manifest[pkg] = "default:" + pkg
	}
	return f
}

func (f *fakeManifests) PinNetworkDependency(ctx context.Context, packagePath string, network domain.Network) error {
	if _, ok := f.manifest[packagePath]; !ok {
		return &domain.ManifestNotFoundError{Path: domain.ManifestPath(packagePath)}
	}
	f.pinned = append(f.pinned, packagePath)
	return nil
}

func (f *fakeManifests) WriteNetworkManifest(ctx context.Context, packagePath, packageID string, network domain.Network) error {
	if _, ok := f.manifest[packagePath]; !ok {
		return &domain.ManifestNotFoundError{Path: domain.ManifestPath(packagePath)}
	}
	f.network[packagePath] = "network:" + packageID
	f.publishedAt[packagePath] = packageID
	return nil
}

func (f *fakeManifests) UpdatePublishedAt(ctx context.Context, packagePath, packageID string, network domain.Network) error {
	if _, ok := f.network[packagePath]; !ok {
		return &domain.ManifestNotFoundError{Path: domain.NetworkManifestPath(packagePath, network)}
	}
	f.publishedAt[packagePath] = packageID
	return nil
}

func (f *fakeManifests) SwapToNetworkManifest(ctx context.Context, packagePath string, network domain.Network) error {
	copyContents, ok := f.network[packagePath]
	if !ok {
		return &domain.ManifestNotFoundError{Path: domain.NetworkManifestPath(packagePath, network)}
	}
	if _, ok := f.backup[packagePath]; ok {
		return errors.New("backup exists")
	}
	f.backup[packagePath] = f.manifest[packagePath]
	f.manifest[packagePath] = copyContents
	return nil
}

func (f *fakeManifests) RestoreManifest(ctx context.Context, packagePath string) error {
	if err := f.restoreErr[packagePath]; err != nil {
		return err
	}
	original, ok := f.backup[packagePath]
	if !ok {
		return nil
	}
	f.manifest[packagePath] = original
	delete(f.backup, packagePath)
	return nil
}

func (f *fakeManifests) HasNetworkManifest(packagePath string, network domain.Network) (bool, error) {
	_, ok := f.network[packagePath]
	return ok, nil
}

type fakeStates struct {
	states  map[string]domain.PublishState
	readErr error
	writes  int
}

func newFakeStates() *fakeStates {
	return &fakeStates{states: map[string]domain.PublishState{}}
}

func (f *fakeStates) Read(ctx context.Context, packagePath string, network domain.Network) (domain.PublishState, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	state, ok := f.states[packagePath]
	if !ok {
		return nil, domain.ErrStateNotFound
	}
	return state, nil
}

func (f *fakeStates) Write(ctx context.Context, state domain.PublishState, packagePath string, network domain.Network) error {
	f.writes++
	f.states[packagePath] = state
	return nil
}

type fakeMerger struct{}

func (fakeMerger) MergeState(ctx context.Context, prior, update domain.PublishState) (domain.PublishState, error) {
	out := domain.PublishState{}
	for k, v := range prior {
		out[k] = v
	}
	for k, v := range update {
		out[k] = v
	}
	return out, nil
}

type fakeEncoder struct {
	txs []domain.Transaction
}

func (f *fakeEncoder) Encode(tx domain.Transaction) ([]byte, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	if err := tx.CheckResolved(); err != nil {
		return nil, err
	}
	f.txs = append(f.txs, tx)
	return []byte("encoded"), nil
}

func (f *fakeEncoder) last() domain.Transaction {
	return f.txs[len(f.txs)-1]
}

type fakeSigner struct {
	address string
}

func (f fakeSigner) Address() string {
	return f.address
}

func (f fakeSigner) Sign(ctx context.Context, txBytes []byte) (string, error) {
	return "sig:" + string(txBytes), nil
}

type fakeLedger struct {
	responses []domain.TransactionResponse
	err       error
	requests  []domain.ExecuteRequest
	coins     []domain.Coin
	lookups   []string
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{coins: []domain.Coin{{
		Ref:     domain.ObjectRef{ObjectID: testGasCoin, Version: 1, Digest: "Dgas"},
		Balance: 10 * DefaultGasBudget,
	}}}
}

func (f *fakeLedger) ReferenceGasPrice(ctx context.Context) (uint64, error) {
	return testGasPrice, nil
}

func (f *fakeLedger) GasCoins(ctx context.Context, owner string) ([]domain.Coin, error) {
	return f.coins, nil
}

func (f *fakeLedger) ObjectRef(ctx context.Context, objectID string) (domain.ObjectRef, error) {
	f.lookups = append(f.lookups, objectID)
	return domain.ObjectRef{ObjectID: objectID, Version: 7, Digest: "D" + objectID}, nil
}

func (f *fakeLedger) Execute(ctx context.Context, req domain.ExecuteRequest) (domain.TransactionResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return domain.TransactionResponse{}, f.err
	}
	if len(f.responses) == 0 {
		return domain.TransactionResponse{}, errors.New("no response queued")
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

type fakeJournal struct {
	entries []domain.JournalEntry
	err     error
}

func (f *fakeJournal) Record(ctx context.Context, entry domain.JournalEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}

type fakeInspector struct{}

func (fakeInspector) Inspect(ctx context.Context, packagePath string) (domain.SourceRevision, error) {
	return domain.SourceRevision{Commit: testCommit, Branch: "main"}, nil
}

type fakeHasher struct{}

func (fakeHasher) SumHex(data []byte) string {
	return "hash-" + string(data)
}

type fakeClock struct {
	now time.Time
}

func (f fakeClock) Now() time.Time {
	return f.now
}

type fakeIDGen struct {
	next int
}

func (f *fakeIDGen) NewID() (string, error) {
	f.next++
	return "01J" + string(rune('A'+f.next)), nil
}

type harness struct {
	compiler  *fakeCompiler
	manifests *fakeManifests
	states    *fakeStates
	encoder   *fakeEncoder
	ledger    *fakeLedger
	journal   *fakeJournal
	publish   *PublishService
	upgrade   *UpgradeService
}

func newHarness(packages ...string) *harness {
	h := &harness{
		compiler: &fakeCompiler{artifact: domain.BuildArtifact{
			Modules:      []string{"AQID"},
			Dependencies: []string{"0x1", "0x2"},
			Digest:       testDigest,
		}},
		manifests: newFakeManifests(packages...),
		states:    newFakeStates(),
		encoder:   &fakeEncoder{},
		ledger:    newFakeLedger(),
		journal:   &fakeJournal{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := Config{Network: domain.NetworkTestnet}
	submitter := NewSubmitter(h.encoder, fakeSigner{address: testSender}, h.ledger, fakeHasher{}, "")
	recorder := NewRecorder(h.journal, fakeInspector{}, fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}, &fakeIDGen{}, logger)
	h.publish = NewPublishService(cfg, h.compiler, h.manifests, h.states, fakeMerger{}, submitter, recorder, logger)
	h.upgrade = NewUpgradeService(cfg, h.compiler, h.manifests, h.states, fakeMerger{}, submitter, recorder, logger)
	return h
}

func ownerPtr(o domain.Owner) *domain.Owner {
	return &o
}

func publishResponse(packageID, capID string) domain.TransactionResponse {
	return domain.TransactionResponse{
		Digest:  "digest-" + packageID,
		Effects: &domain.TransactionEffects{Status: domain.ExecutionStatus{Status: "success"}},
		ObjectChanges: []domain.ObjectChange{
			{Type: domain.ChangePublished, PackageID: packageID},
			{Type: domain.ChangeCreated, Sender: testSender, Owner: ownerPtr(domain.AddressOwner(testSender)),
				ObjectType: "0x2::package::UpgradeCap", ObjectID: capID},
			{Type: domain.ChangeCreated, Sender: testSender, Owner: ownerPtr(domain.AddressOwner(testSender)),
				ObjectType: "0x2::package::Publisher", ObjectID: "0xpublisher"},
			{Type: domain.ChangeCreated, Sender: testSender, Owner: ownerPtr(domain.AddressOwner(testSender)),
				ObjectType: packageID + "::house_data::HouseCap", ObjectID: "0xhousecap"},
		},
	}
}

func upgradeResponse(packageID, capID string) domain.TransactionResponse {
	return domain.TransactionResponse{
		Digest:  "digest-" + packageID,
		Effects: &domain.TransactionEffects{Status: domain.ExecutionStatus{Status: "success"}},
		ObjectChanges: []domain.ObjectChange{
			{Type: domain.ChangeMutated, Sender: testSender, Owner: ownerPtr(domain.AddressOwner(testSender)),
				ObjectType: "0x2::package::UpgradeCap", ObjectID: capID},
			{Type: domain.ChangePublished, PackageID: packageID},
		},
	}
}

func failedResponse(message string) domain.TransactionResponse {
	return domain.TransactionResponse{
		Digest:  "digest-failed",
		Effects: &domain.TransactionEffects{Status: domain.ExecutionStatus{Status: "failure", Error: message}},
	}
}
