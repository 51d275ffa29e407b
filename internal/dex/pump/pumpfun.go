package pump

import (
	"bytes"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
)

var (
	PUMPDex     = "pump fun (bonding curve)"
	PUMPManager = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")

	EventAuthority   = solana.MustPublicKeyFromBase58("Ce6TQqeHC9p8KetsN6JsjHK7UTZk7nasjjnr7XxXp9F1")
	MPLTokenMetadata = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")
	FeeConfig        = solana.MustPublicKeyFromBase58("8Wf5TiAheLUqBrKXeYg2JtAFFMWtKdG2BSFgqUcPVwTt")
	FeeProgram       = solana.MustPublicKeyFromBase58("pfeeUxB6jkeY1Hxd7CsFCAjcbHA9rWtchMGdZ6VojVZ")

	PUMPCreateMethod = []byte{24, 30, 200, 40, 5, 28, 7, 119}
	PUMPBuyMethod    = []byte{0x66, 0x06, 0x3d, 0x12, 0x01, 0xda, 0xeb, 0xea}

	GlobalAccountDiscriminator       = [8]byte{167, 232, 232, 177, 200, 108, 114, 127}
	BondingCurveAccountDiscriminator = [8]byte{23, 183, 248, 55, 96, 216, 172, 96}

	// pump deployed tokens are 6 decimals
	DefaultDecimals uint8 = 6
)

const (
	GlobalSeed                  = "global"
	MintAuthoritySeed           = "mint-authority"
	BondingCurveSeed            = "bonding-curve"
	MetadataSeed                = "metadata"
	CreatorVaultSeed            = "creator-vault"
	GlobalVolumeAccumulatorSeed = "global_volume_accumulator"
	UserVolumeAccumulatorSeed   = "user_volume_accumulator"
)

var (
	ErrCurveComplete    = errors.New("pumpfun: bonding curve is complete")
	ErrBadDiscriminator = errors.New("pumpfun: account discriminator mismatch")
	ErrGlobalNotFound   = errors.New("pumpfun: global settings not found")
)

type GlobalAccount struct {
	Discriminator               [8]byte
	Initialized                 bool
	Authority                   solana.PublicKey
	FeeRecipient                solana.PublicKey
	InitialVirtualTokenReserves uint64
	InitialVirtualSOLReserves   uint64
	InitialRealTokenReserves    uint64
	TokenTotalSupply            uint64
	FeeBasisPoints              uint64
}

// BondingCurveAccount mirrors the on-chain curve. Accounts created before creator fees
// end right after Complete, in which case Creator stays zero.
type BondingCurveAccount struct {
	Discriminator        [8]byte
	VirtualTokenReserves uint64
	VirtualSOLReserves   uint64
	RealTokenReserves    uint64
	RealSOLReserves      uint64
	TokenTotalSupply     uint64
	Complete             bool
	Creator              solana.PublicKey
}

func (bc *BondingCurveAccount) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	raw, err := dec.ReadNBytes(8)
	if err != nil {
		return err
	}
	copy(bc.Discriminator[:], raw)
	for _, field := range []*uint64{
		&bc.VirtualTokenReserves,
		&bc.VirtualSOLReserves,
		&bc.RealTokenReserves,
		&bc.RealSOLReserves,
		&bc.TokenTotalSupply,
	} {
		if *field, err = dec.ReadUint64(binary.LittleEndian); err != nil {
			return err
		}
	}
	if bc.Complete, err = dec.ReadBool(); err != nil {
		return err
	}
	if dec.Remaining() >= solana.PublicKeyLength {
		raw, err = dec.ReadNBytes(solana.PublicKeyLength)
		if err != nil {
			return err
		}
		bc.Creator = solana.PublicKeyFromBytes(raw)
	}
	return nil
}

func (bc BondingCurveAccount) MarshalWithEncoder(enc *bin.Encoder) (err error) {
	if err = enc.WriteBytes(bc.Discriminator[:], false); err != nil {
		return err
	}
	for _, v := range []uint64{
		bc.VirtualTokenReserves,
		bc.VirtualSOLReserves,
		bc.RealTokenReserves,
		bc.RealSOLReserves,
		bc.TokenTotalSupply,
	} {
		if err = enc.WriteUint64(v, binary.LittleEndian); err != nil {
			return err
		}
	}
	if err = enc.WriteBool(bc.Complete); err != nil {
		return err
	}
	return enc.WriteBytes(bc.Creator[:], false)
}

func DecodeGlobalAccount(data []byte) (*GlobalAccount, error) {
	var out GlobalAccount
	if err := decode(data, &out); err != nil {
		return nil, errors.Wrap(err, "decode global account")
	}
	if out.Discriminator != GlobalAccountDiscriminator {
		return nil, ErrBadDiscriminator
	}
	return &out, nil
}

func DecodeBondingCurveAccount(data []byte) (*BondingCurveAccount, error) {
	var out BondingCurveAccount
	if err := decode(data, &out); err != nil {
		return nil, errors.Wrap(err, "decode bonding curve")
	}
	if out.Discriminator != BondingCurveAccountDiscriminator {
		return nil, ErrBadDiscriminator
	}
	return &out, nil
}

func decode(data []byte, v interface{}) error {
	return bin.NewBorshDecoder(data).Decode(v)
}

func encode(v interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func GetGlobalAccountPDA() solana.PublicKey {
	pda, _, _ := solana.FindProgramAddress([][]byte{[]byte(GlobalSeed)}, PUMPManager)
	return pda
}

func GetMintAuthorityPDA() solana.PublicKey {
	pda, _, _ := solana.FindProgramAddress([][]byte{[]byte(MintAuthoritySeed)}, PUMPManager)
	return pda
}

func GetBondingCurvePDA(mint solana.PublicKey) solana.PublicKey {
	pda, _, _ := solana.FindProgramAddress([][]byte{
		[]byte(BondingCurveSeed),
		mint.Bytes(),
	}, PUMPManager)
	return pda
}

func GetAssociatedBondingCurve(mint solana.PublicKey) solana.PublicKey {
	ata, _, _ := solana.FindAssociatedTokenAddress(GetBondingCurvePDA(mint), mint)
	return ata
}

func GetMetadataPDA(mint solana.PublicKey) solana.PublicKey {
	pda, _, _ := solana.FindProgramAddress([][]byte{
		[]byte(MetadataSeed),
		MPLTokenMetadata.Bytes(),
		mint.Bytes(),
	}, MPLTokenMetadata)
	return pda
}

func GetCreatorVaultPDA(creator solana.PublicKey) solana.PublicKey {
	pda, _, _ := solana.FindProgramAddress([][]byte{
		[]byte(CreatorVaultSeed),
		creator.Bytes(),
	}, PUMPManager)
	return pda
}

func GetGlobalVolumeAccumulatorPDA() solana.PublicKey {
	pda, _, _ := solana.FindProgramAddress([][]byte{[]byte(GlobalVolumeAccumulatorSeed)}, PUMPManager)
	return pda
}

func GetUserVolumeAccumulatorPDA(user solana.PublicKey) solana.PublicKey {
	pda, _, _ := solana.FindProgramAddress([][]byte{
		[]byte(UserVolumeAccumulatorSeed),
		user.Bytes(),
	}, PUMPManager)
	return pda
}
