package zoo

import (
	"context"
	"errors"

	"github.com/aretw0/wca/pkg/callable"
	"github.com/aretw0/wca/pkg/domain"
)

// Always takes its transition unconditionally.
// Useful for a welcome message when the application starts.
type Always struct{}

func NewAlways() *Always { return &Always{} }

func newAlways(args callable.Args) (callable.Predicate, error) {
	if err := callable.Decode(args, &struct{}{}); err != nil {
		return nil, err
	}
	return &Always{}, nil
}

func (*Always) CallableName() string { return AlwaysName }
func (*Always) Args() callable.Args  { return callable.Args{} }

func (*Always) Test(context.Context, domain.AppState) (bool, error) {
	return true, nil
}

// HasObjectClassConfig holds the arguments of HasObjectClass.
type HasObjectClassConfig struct {
	ClassName string `json:"class_name"`
}

// HasObjectClass holds when the application state contains the class key,
// typically set by a detector processor.
type HasObjectClass struct {
	cfg HasObjectClassConfig
}

func NewHasObjectClass(className string) *HasObjectClass {
	return &HasObjectClass{cfg: HasObjectClassConfig{ClassName: className}}
}

func newHasObjectClass(args callable.Args) (callable.Predicate, error) {
	var cfg HasObjectClassConfig
	if err := callable.Decode(args, &cfg); err != nil {
		return nil, err
	}
	if cfg.ClassName == "" {
		return nil, errors.New("class_name is required")
	}
	return &HasObjectClass{cfg: cfg}, nil
}

func (*HasObjectClass) CallableName() string  { return HasObjectClassName }
func (p *HasObjectClass) Args() callable.Args { return callable.ArgsOf(p.cfg) }

func (p *HasObjectClass) Test(_ context.Context, app domain.AppState) (bool, error) {
	_, ok := app[p.cfg.ClassName]
	return ok, nil
}
