package zkproof

import (
	"encoding/json"

	"github.com/spf13/cobra"

	cph "github.com/deepfamily/identity-zk/circuits/person-hash"
	csn "github.com/deepfamily/identity-zk/circuits/salted-name"
	"github.com/deepfamily/identity-zk/models"
)

// identityFlags binds one IdentityRecord to flags with an optional prefix
type identityFlags struct {
	name       string
	passphrase string
	birthYear  uint32
	birthMonth uint8
	birthDay   uint8
	gender     uint8
	bc         bool
}

func (f *identityFlags) bind(cmd *cobra.Command, prefix, who string) {
	fs := cmd.Flags()
	fs.StringVar(&f.name, prefix+"name", "", "Full name of "+who)
	fs.StringVar(&f.passphrase, prefix+"passphrase", "", "Passphrase salting the name of "+who)
	fs.Uint32Var(&f.birthYear, prefix+"birth-year", 0, "Birth year of "+who)
	fs.Uint8Var(&f.birthMonth, prefix+"birth-month", 0, "Birth month of "+who+" (0 = unknown)")
	fs.Uint8Var(&f.birthDay, prefix+"birth-day", 0, "Birth day of "+who+" (0 = unknown)")
	fs.Uint8Var(&f.gender, prefix+"gender", 0, "Gender code of "+who+" (0-3)")
	fs.BoolVar(&f.bc, prefix+"bc", false, "Birth year of "+who+" is BC")
}

func (f *identityFlags) record() models.IdentityRecord {
	return models.IdentityRecord{
		FullName:   f.name,
		Passphrase: f.passphrase,
		IsBirthBC:  f.bc,
		BirthYear:  f.birthYear,
		BirthMonth: f.birthMonth,
		BirthDay:   f.birthDay,
		Gender:     f.gender,
	}
}

// parent returns nil when no name was given, marking the parent absent
func (f *identityFlags) parent() *models.IdentityRecord {
	if f.name == "" {
		return nil
	}
	r := f.record()
	return &r
}

// nameFlags are the inputs of the salted-name circuit
type nameFlags struct {
	name       string
	passphrase string
	minter     string
}

func (f *nameFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Full name")
	cmd.Flags().StringVar(&f.passphrase, "passphrase", "", "Passphrase salting the name")
	cmd.Flags().StringVar(&f.minter, "minter", "", "Minter account (0x address or decimal)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("minter")
}

func (f *nameFlags) request() ([]byte, error) {
	return json.Marshal(csn.Request{FullName: f.name, Passphrase: f.passphrase, Minter: f.minter})
}

// personFlags are the inputs of the person-hash circuit
type personFlags struct {
	self      identityFlags
	father    identityFlags
	mother    identityFlags
	submitter string
	demo      bool
}

func (f *personFlags) bind(cmd *cobra.Command) {
	f.self.bind(cmd, "", "the person")
	f.father.bind(cmd, "father-", "the father")
	f.mother.bind(cmd, "mother-", "the mother")
	cmd.Flags().StringVar(&f.submitter, "submitter", "", "Submitting account (0x address or decimal)")
	cmd.Flags().BoolVar(&f.demo, "demo", false, "Use the built-in demo identity and submitter")
}

func (f *personFlags) request() ([]byte, error) {
	req := cph.Request{
		Self:      f.self.record(),
		Father:    f.father.parent(),
		Mother:    f.mother.parent(),
		Submitter: f.submitter,
	}
	if f.demo {
		req.Self = models.GetDemoIdentity()
		if req.Submitter == "" {
			req.Submitter = models.DemoSubmitter
		}
	}
	return json.Marshal(req)
}

// subjectCommands returns the "name" and "person" subcommands. Both build the
// circuit's JSON request from flags and hand it to run.
func subjectCommands(verb string, run func(cmd *cobra.Command, circuit string, request []byte) error) []*cobra.Command {
	nf := &nameFlags{}
	nameCmd := &cobra.Command{
		Use:   "name",
		Short: verb + " for the salted-name circuit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := nf.request()
			if err != nil {
				return err
			}
			return run(cmd, csn.Name, req)
		},
	}
	nf.bind(nameCmd)

	pf := &personFlags{}
	personCmd := &cobra.Command{
		Use:   "person",
		Short: verb + " for the person-hash circuit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := pf.request()
			if err != nil {
				return err
			}
			return run(cmd, cph.Name, req)
		},
	}
	pf.bind(personCmd)

	return []*cobra.Command{nameCmd, personCmd}
}
