package pump

import (
	"encoding/binary"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	format "github.com/gagliardetto/solana-go/text/format"
	"github.com/gagliardetto/treeout"
)

// CreateInstruction mints a new token and opens its bonding curve.
type CreateInstruction struct {
	bin.BaseVariant
	MethodId []byte
	Name     string
	Symbol   string
	Uri      string
	Creator  solana.PublicKey

	// [0] = [WRITE, SIGNER] mint
	// [1] = [] mintAuthority
	// [2] = [WRITE] bondingCurve
	// [3] = [WRITE] associatedBondingCurve
	// [4] = [] global
	// [5] = [] mplTokenMetadata
	// [6] = [WRITE] metadata
	// [7] = [WRITE, SIGNER] user
	// [8] = [] systemProgram
	// [9] = [] tokenProgram
	// [10] = [] associatedTokenProgram
	// [11] = [] rent
	// [12] = [] eventAuthority
	// [13] = [] program
	solana.AccountMetaSlice `bin:"-" borsh_skip:"true"`
}

// NewCreateInstruction builds the create instruction for mint, paid and signed by user.
func NewCreateInstruction(name, symbol, uri string, mint, user solana.PublicKey) *CreateInstruction {
	inst := &CreateInstruction{
		MethodId:         PUMPCreateMethod,
		Name:             name,
		Symbol:           symbol,
		Uri:              uri,
		Creator:          user,
		AccountMetaSlice: make(solana.AccountMetaSlice, 14),
	}
	inst.BaseVariant = bin.BaseVariant{
		Impl: inst,
	}

	inst.AccountMetaSlice[0] = solana.Meta(mint).WRITE().SIGNER()
	inst.AccountMetaSlice[1] = solana.Meta(GetMintAuthorityPDA())
	inst.AccountMetaSlice[2] = solana.Meta(GetBondingCurvePDA(mint)).WRITE()
	inst.AccountMetaSlice[3] = solana.Meta(GetAssociatedBondingCurve(mint)).WRITE()
	inst.AccountMetaSlice[4] = solana.Meta(GetGlobalAccountPDA())
	inst.AccountMetaSlice[5] = solana.Meta(MPLTokenMetadata)
	inst.AccountMetaSlice[6] = solana.Meta(GetMetadataPDA(mint)).WRITE()
	inst.AccountMetaSlice[7] = solana.Meta(user).WRITE().SIGNER()
	inst.AccountMetaSlice[8] = solana.Meta(solana.SystemProgramID)
	inst.AccountMetaSlice[9] = solana.Meta(solana.TokenProgramID)
	inst.AccountMetaSlice[10] = solana.Meta(solana.SPLAssociatedTokenAccountProgramID)
	inst.AccountMetaSlice[11] = solana.Meta(solana.SysVarRentPubkey)
	inst.AccountMetaSlice[12] = solana.Meta(EventAuthority)
	inst.AccountMetaSlice[13] = solana.Meta(PUMPManager)
	return inst
}

func (inst *CreateInstruction) ProgramID() solana.PublicKey {
	return PUMPManager
}

func (inst *CreateInstruction) Accounts() (out []*solana.AccountMeta) {
	return inst.Impl.(solana.AccountsGettable).GetAccounts()
}

func (inst *CreateInstruction) Data() ([]byte, error) {
	out, err := encode(inst)
	if err != nil {
		return nil, fmt.Errorf("unable to encode instruction: %w", err)
	}
	return out, nil
}

func (inst *CreateInstruction) Validate() error {
	if inst.Name == "" {
		return errors.New("name not set")
	}
	if inst.Symbol == "" {
		return errors.New("symbol not set")
	}
	if inst.Uri == "" {
		return errors.New("uri not set")
	}
	for i, meta := range inst.AccountMetaSlice {
		if meta == nil {
			return fmt.Errorf("accounts[%d] not set", i)
		}
	}
	return nil
}

func (inst *CreateInstruction) MarshalWithEncoder(encoder *bin.Encoder) (err error) {
	if err = encoder.WriteBytes(inst.MethodId, false); err != nil {
		return err
	}
	for _, s := range []string{inst.Name, inst.Symbol, inst.Uri} {
		if err = writeBorshString(encoder, s); err != nil {
			return err
		}
	}
	return encoder.WriteBytes(inst.Creator[:], false)
}

func (inst *CreateInstruction) EncodeToTree(parent treeout.Branches) {
	parent.Child(format.Program(PUMPDex, PUMPManager)).
		ParentFunc(func(programBranch treeout.Branches) {
			programBranch.Child(format.Instruction("Create")).
				ParentFunc(func(instructionBranch treeout.Branches) {
					instructionBranch.Child("Params[len=4]").ParentFunc(func(paramsBranch treeout.Branches) {
						paramsBranch.Child(format.Param("   Name", inst.Name))
						paramsBranch.Child(format.Param(" Symbol", inst.Symbol))
						paramsBranch.Child(format.Param("    Uri", inst.Uri))
						paramsBranch.Child(format.Param("Creator", inst.Creator))
					})
					instructionBranch.Child("Accounts[len=14]").ParentFunc(func(accountsBranch treeout.Branches) {
						names := []string{
							"mint", "mintAuthority", "bondingCurve", "associatedBondingCurve",
							"global", "mplTokenMetadata", "metadata", "user", "systemProgram",
							"tokenProgram", "associatedTokenProgram", "rent", "eventAuthority", "program",
						}
						for i, name := range names {
							accountsBranch.Child(format.Meta(name, inst.AccountMetaSlice.Get(i)))
						}
					})
				})
		})
}

func (inst *CreateInstruction) String() string {
	tree := treeout.New("")
	inst.EncodeToTree(tree)
	return tree.String()
}

// BuyInstruction buys amount tokens, spending at most MaxSolCost lamports.
type BuyInstruction struct {
	bin.BaseVariant
	MethodId                []byte
	Amount                  uint64
	MaxSolCost              uint64
	solana.AccountMetaSlice `bin:"-" borsh_skip:"true"`
}

// NewBuyInstruction builds the buy instruction. creator is the bonding curve creator,
// whose vault receives the creator fee.
func NewBuyInstruction(
	amount uint64,
	maxSolCost uint64,
	user solana.PublicKey,
	mint solana.PublicKey,
	creator solana.PublicKey,
	feeRecipient solana.PublicKey,
) *BuyInstruction {
	inst := &BuyInstruction{
		MethodId:         PUMPBuyMethod,
		Amount:           amount,
		MaxSolCost:       maxSolCost,
		AccountMetaSlice: make(solana.AccountMetaSlice, 16),
	}
	inst.BaseVariant = bin.BaseVariant{
		Impl: inst,
	}

	ataUser, _, _ := solana.FindAssociatedTokenAddress(user, mint)

	inst.AccountMetaSlice[0] = solana.Meta(GetGlobalAccountPDA())
	inst.AccountMetaSlice[1] = solana.Meta(feeRecipient).WRITE()
	inst.AccountMetaSlice[2] = solana.Meta(mint)
	inst.AccountMetaSlice[3] = solana.Meta(GetBondingCurvePDA(mint)).WRITE()
	inst.AccountMetaSlice[4] = solana.Meta(GetAssociatedBondingCurve(mint)).WRITE()
	inst.AccountMetaSlice[5] = solana.Meta(ataUser).WRITE()
	inst.AccountMetaSlice[6] = solana.Meta(user).WRITE().SIGNER()
	inst.AccountMetaSlice[7] = solana.Meta(solana.SystemProgramID)
	inst.AccountMetaSlice[8] = solana.Meta(solana.TokenProgramID)
	inst.AccountMetaSlice[9] = solana.Meta(GetCreatorVaultPDA(creator)).WRITE()
	inst.AccountMetaSlice[10] = solana.Meta(EventAuthority)
	inst.AccountMetaSlice[11] = solana.Meta(PUMPManager)
	inst.AccountMetaSlice[12] = solana.Meta(GetGlobalVolumeAccumulatorPDA()).WRITE()
	inst.AccountMetaSlice[13] = solana.Meta(GetUserVolumeAccumulatorPDA(user)).WRITE()
	inst.AccountMetaSlice[14] = solana.Meta(FeeConfig)
	inst.AccountMetaSlice[15] = solana.Meta(FeeProgram)
	return inst
}

func (inst *BuyInstruction) ProgramID() solana.PublicKey {
	return PUMPManager
}

func (inst *BuyInstruction) Accounts() (out []*solana.AccountMeta) {
	return inst.Impl.(solana.AccountsGettable).GetAccounts()
}

func (inst *BuyInstruction) Data() ([]byte, error) {
	out, err := encode(inst)
	if err != nil {
		return nil, fmt.Errorf("unable to encode instruction: %w", err)
	}
	return out, nil
}

func (inst *BuyInstruction) MarshalWithEncoder(encoder *bin.Encoder) (err error) {
	err = encoder.WriteBytes(inst.MethodId, false)
	if err != nil {
		return err
	}
	err = encoder.WriteUint64(inst.Amount, binary.LittleEndian)
	if err != nil {
		return err
	}
	return encoder.WriteUint64(inst.MaxSolCost, binary.LittleEndian)
}

func (inst *BuyInstruction) EncodeToTree(parent treeout.Branches) {
	parent.Child(format.Program(PUMPDex, PUMPManager)).
		ParentFunc(func(programBranch treeout.Branches) {
			programBranch.Child(format.Instruction("Buy")).
				ParentFunc(func(instructionBranch treeout.Branches) {
					instructionBranch.Child("Params[len=2]").ParentFunc(func(paramsBranch treeout.Branches) {
						paramsBranch.Child(format.Param("    Amount", inst.Amount))
						paramsBranch.Child(format.Param("MaxSolCost", inst.MaxSolCost))
					})
					instructionBranch.Child("Accounts[len=16]").ParentFunc(func(accountsBranch treeout.Branches) {
						accountsBranch.Child(format.Meta("        global", inst.AccountMetaSlice.Get(0)))
						accountsBranch.Child(format.Meta("  feeRecipient", inst.AccountMetaSlice.Get(1)))
						accountsBranch.Child(format.Meta("          mint", inst.AccountMetaSlice.Get(2)))
						accountsBranch.Child(format.Meta("  bondingCurve", inst.AccountMetaSlice.Get(3)))
						accountsBranch.Child(format.Meta("  assocBonding", inst.AccountMetaSlice.Get(4)))
						accountsBranch.Child(format.Meta("     assocUser", inst.AccountMetaSlice.Get(5)))
						accountsBranch.Child(format.Meta("          user", inst.AccountMetaSlice.Get(6)))
						accountsBranch.Child(format.Meta("  creatorVault", inst.AccountMetaSlice.Get(9)))
					})
				})
		})
}

func (inst *BuyInstruction) String() string {
	tree := treeout.New("")
	inst.EncodeToTree(tree)
	return tree.String()
}

// borsh strings are a u32 length followed by the bytes
func writeBorshString(encoder *bin.Encoder, s string) error {
	if err := encoder.WriteUint32(uint32(len(s)), binary.LittleEndian); err != nil {
		return err
	}
	return encoder.WriteBytes([]byte(s), false)
}
