// Package blocks defines the block palette and the static per-block metadata
// consulted by every simulation subsystem.
package blocks

// ID is a palette index. The palette is small and fixed; new blocks are
// appended, never reordered, so snapshots and edit logs stay valid.
type ID uint8

const (
	Air ID = iota
	Stone
	Grass
	Dirt
	Cobblestone
	Planks
	Sapling
	Bedrock
	Water
	StillWater
	Lava
	StillLava
	Sand
	Gravel
	GoldOre
	IronOre
	CoalOre
	Log
	Leaves
	Sponge
	Glass
	LapisOre
	LapisBlock
	Sandstone
	NoteBlock
	TallGrass
	Fern
	DeadBush
	Wool
	Dandelion
	Rose
	BrownMushroom
	RedMushroom
	GoldBlock
	IronBlock
	StoneSlab
	Bricks
	TNT
	Bookshelf
	MossStone
	Obsidian
	Torch
	Fire
	WoodStairs
	Chest
	RedstoneWire
	DiamondOre
	DiamondBlock
	CraftingTable
	Wheat
	Farmland
	Furnace
	FurnaceLit
	Door
	Ladder
	Rail
	StoneStairs
	Lever
	StonePressurePlate
	WoodPressurePlate
	RedstoneOre
	RedstoneTorch
	RedstoneTorchOff
	Button
	Snow
	Ice
	SnowBlock
	Cactus
	Clay
	SugarCane
	Fence
	Pumpkin
	Netherrack
	Glowstone
	PumpkinLit
	CakeBlock
	Repeater
	Trapdoor
	StoneBricks
	MushroomBlock
	IronBars
	GlassPane
	Melon
	Vines
	FenceGate
	BrickStairs
	StoneBrickStairs
	LilyPad
	NetherBrick
	EnchantingTable
	EndStone
	RedstoneLamp
	RedstoneLampLit
	SandstoneStairs
	EmeraldOre
	EmeraldBlock
	CommandBlock
	Beacon
	CobblestoneWall
	WoodButton
	RedstoneBlock
	Quartz

	// Count is the number of palette entries.
	Count
)

// Def is the static metadata for one block id.
type Def struct {
	Name string

	Solid       bool // collision + conductor support
	Transparent bool // does not occlude neighbors when meshing
	Flammable   bool
	Gravity     bool // falls when unsupported

	Hardness float64 // relative break time; <0 means unbreakable
	Light    uint8   // emitted light level, 0..15
}

var defs = [Count]Def{
	Air:                {Name: "air", Transparent: true},
	Stone:              {Name: "stone", Solid: true, Hardness: 1.5},
	Grass:              {Name: "grass", Solid: true, Hardness: 0.6},
	Dirt:               {Name: "dirt", Solid: true, Hardness: 0.5},
	Cobblestone:        {Name: "cobblestone", Solid: true, Hardness: 2.0},
	Planks:             {Name: "planks", Solid: true, Flammable: true, Hardness: 2.0},
	Sapling:            {Name: "sapling", Transparent: true, Flammable: true, Hardness: 0.1},
	Bedrock:            {Name: "bedrock", Solid: true, Hardness: -1},
	Water:              {Name: "water", Transparent: true, Hardness: 0.1},
	StillWater:         {Name: "still_water", Transparent: true, Hardness: 0.1},
	Lava:               {Name: "lava", Transparent: true, Light: 15, Hardness: 0.1},
	StillLava:          {Name: "still_lava", Transparent: true, Light: 15, Hardness: 0.1},
	Sand:               {Name: "sand", Solid: true, Gravity: true, Hardness: 0.5},
	Gravel:             {Name: "gravel", Solid: true, Gravity: true, Hardness: 0.6},
	GoldOre:            {Name: "gold_ore", Solid: true, Hardness: 3.0},
	IronOre:            {Name: "iron_ore", Solid: true, Hardness: 3.0},
	CoalOre:            {Name: "coal_ore", Solid: true, Hardness: 3.0},
	Log:                {Name: "log", Solid: true, Flammable: true, Hardness: 2.0},
	Leaves:             {Name: "leaves", Solid: true, Transparent: true, Flammable: true, Hardness: 0.2},
	Sponge:             {Name: "sponge", Solid: true, Hardness: 0.6},
	Glass:              {Name: "glass", Solid: true, Transparent: true, Hardness: 0.3},
	LapisOre:           {Name: "lapis_ore", Solid: true, Hardness: 3.0},
	LapisBlock:         {Name: "lapis_block", Solid: true, Hardness: 3.0},
	Sandstone:          {Name: "sandstone", Solid: true, Hardness: 0.8},
	NoteBlock:          {Name: "note_block", Solid: true, Flammable: true, Hardness: 0.8},
	TallGrass:          {Name: "tall_grass", Transparent: true, Flammable: true, Hardness: 0.1},
	Fern:               {Name: "fern", Transparent: true, Flammable: true, Hardness: 0.1},
	DeadBush:           {Name: "dead_bush", Transparent: true, Flammable: true, Hardness: 0.1},
	Wool:               {Name: "wool", Solid: true, Flammable: true, Hardness: 0.8},
	Dandelion:          {Name: "dandelion", Transparent: true, Hardness: 0.1},
	Rose:               {Name: "rose", Transparent: true, Hardness: 0.1},
	BrownMushroom:      {Name: "brown_mushroom", Transparent: true, Hardness: 0.1},
	RedMushroom:        {Name: "red_mushroom", Transparent: true, Hardness: 0.1},
	GoldBlock:          {Name: "gold_block", Solid: true, Hardness: 3.0},
	IronBlock:          {Name: "iron_block", Solid: true, Hardness: 5.0},
	StoneSlab:          {Name: "stone_slab", Solid: true, Transparent: true, Hardness: 2.0},
	Bricks:             {Name: "bricks", Solid: true, Hardness: 2.0},
	TNT:                {Name: "tnt", Solid: true, Flammable: true, Hardness: 0.1},
	Bookshelf:          {Name: "bookshelf", Solid: true, Flammable: true, Hardness: 1.5},
	MossStone:          {Name: "moss_stone", Solid: true, Hardness: 2.0},
	Obsidian:           {Name: "obsidian", Solid: true, Hardness: 50.0},
	Torch:              {Name: "torch", Transparent: true, Light: 14, Hardness: 0.1},
	Fire:               {Name: "fire", Transparent: true, Light: 15, Hardness: 0.1},
	WoodStairs:         {Name: "wood_stairs", Solid: true, Transparent: true, Flammable: true, Hardness: 2.0},
	Chest:              {Name: "chest", Solid: true, Flammable: true, Hardness: 2.5},
	RedstoneWire:       {Name: "redstone_wire", Transparent: true, Hardness: 0.1},
	DiamondOre:         {Name: "diamond_ore", Solid: true, Hardness: 3.0},
	DiamondBlock:       {Name: "diamond_block", Solid: true, Hardness: 5.0},
	CraftingTable:      {Name: "crafting_table", Solid: true, Flammable: true, Hardness: 2.5},
	Wheat:              {Name: "wheat", Transparent: true, Hardness: 0.1},
	Farmland:           {Name: "farmland", Solid: true, Hardness: 0.6},
	Furnace:            {Name: "furnace", Solid: true, Hardness: 3.5},
	FurnaceLit:         {Name: "furnace_lit", Solid: true, Light: 13, Hardness: 3.5},
	Door:               {Name: "door", Transparent: true, Flammable: true, Hardness: 3.0},
	Ladder:             {Name: "ladder", Transparent: true, Flammable: true, Hardness: 0.4},
	Rail:               {Name: "rail", Transparent: true, Hardness: 0.7},
	StoneStairs:        {Name: "stone_stairs", Solid: true, Transparent: true, Hardness: 2.0},
	Lever:              {Name: "lever", Transparent: true, Hardness: 0.5},
	StonePressurePlate: {Name: "stone_pressure_plate", Transparent: true, Hardness: 0.5},
	WoodPressurePlate:  {Name: "wood_pressure_plate", Transparent: true, Flammable: true, Hardness: 0.5},
	RedstoneOre:        {Name: "redstone_ore", Solid: true, Hardness: 3.0},
	RedstoneTorch:      {Name: "redstone_torch", Transparent: true, Light: 7, Hardness: 0.1},
	RedstoneTorchOff:   {Name: "redstone_torch_off", Transparent: true, Hardness: 0.1},
	Button:             {Name: "button", Transparent: true, Hardness: 0.5},
	Snow:               {Name: "snow", Transparent: true, Hardness: 0.1},
	Ice:                {Name: "ice", Solid: true, Transparent: true, Hardness: 0.5},
	SnowBlock:          {Name: "snow_block", Solid: true, Hardness: 0.2},
	Cactus:             {Name: "cactus", Solid: true, Transparent: true, Hardness: 0.4},
	Clay:               {Name: "clay", Solid: true, Hardness: 0.6},
	SugarCane:          {Name: "sugar_cane", Transparent: true, Flammable: true, Hardness: 0.1},
	Fence:              {Name: "fence", Solid: true, Transparent: true, Flammable: true, Hardness: 2.0},
	Pumpkin:            {Name: "pumpkin", Solid: true, Hardness: 1.0},
	Netherrack:         {Name: "netherrack", Solid: true, Hardness: 0.4},
	Glowstone:          {Name: "glowstone", Solid: true, Transparent: true, Light: 15, Hardness: 0.3},
	PumpkinLit:         {Name: "pumpkin_lit", Solid: true, Light: 15, Hardness: 1.0},
	CakeBlock:          {Name: "cake", Transparent: true, Hardness: 0.5},
	Repeater:           {Name: "repeater", Transparent: true, Hardness: 0.5},
	Trapdoor:           {Name: "trapdoor", Transparent: true, Flammable: true, Hardness: 3.0},
	StoneBricks:        {Name: "stone_bricks", Solid: true, Hardness: 1.5},
	MushroomBlock:      {Name: "mushroom_block", Solid: true, Hardness: 0.2},
	IronBars:           {Name: "iron_bars", Solid: true, Transparent: true, Hardness: 5.0},
	GlassPane:          {Name: "glass_pane", Solid: true, Transparent: true, Hardness: 0.3},
	Melon:              {Name: "melon", Solid: true, Hardness: 1.0},
	Vines:              {Name: "vines", Transparent: true, Flammable: true, Hardness: 0.2},
	FenceGate:          {Name: "fence_gate", Solid: true, Transparent: true, Flammable: true, Hardness: 2.0},
	BrickStairs:        {Name: "brick_stairs", Solid: true, Transparent: true, Hardness: 2.0},
	StoneBrickStairs:   {Name: "stone_brick_stairs", Solid: true, Transparent: true, Hardness: 1.5},
	LilyPad:            {Name: "lily_pad", Transparent: true, Hardness: 0.1},
	NetherBrick:        {Name: "nether_brick", Solid: true, Hardness: 2.0},
	EnchantingTable:    {Name: "enchanting_table", Solid: true, Transparent: true, Hardness: 5.0},
	EndStone:           {Name: "end_stone", Solid: true, Hardness: 3.0},
	RedstoneLamp:       {Name: "redstone_lamp", Solid: true, Hardness: 0.3},
	RedstoneLampLit:    {Name: "redstone_lamp_lit", Solid: true, Light: 15, Hardness: 0.3},
	SandstoneStairs:    {Name: "sandstone_stairs", Solid: true, Transparent: true, Hardness: 0.8},
	EmeraldOre:         {Name: "emerald_ore", Solid: true, Hardness: 3.0},
	EmeraldBlock:       {Name: "emerald_block", Solid: true, Hardness: 5.0},
	CommandBlock:       {Name: "command_block", Solid: true, Hardness: -1},
	Beacon:             {Name: "beacon", Solid: true, Transparent: true, Light: 15, Hardness: 3.0},
	CobblestoneWall:    {Name: "cobblestone_wall", Solid: true, Transparent: true, Hardness: 2.0},
	WoodButton:         {Name: "wood_button", Transparent: true, Flammable: true, Hardness: 0.5},
	RedstoneBlock:      {Name: "redstone_block", Solid: true, Hardness: 5.0},
	Quartz:             {Name: "quartz", Solid: true, Hardness: 0.8},
}

var byName map[string]ID

func init() {
	byName = make(map[string]ID, Count)
	for id := ID(0); id < Count; id++ {
		byName[defs[id].Name] = id
	}
}

// Lookup returns the definition for id. Unknown ids resolve to air's
// definition so callers never branch on validity.
func Lookup(id ID) Def {
	if id >= Count {
		return defs[Air]
	}
	return defs[id]
}

// ByName resolves a palette name to an id.
func ByName(name string) (ID, bool) {
	id, ok := byName[name]
	return id, ok
}

func Name(id ID) string { return Lookup(id).Name }
func Solid(id ID) bool { return Lookup(id).Solid }
func Gravity(id ID) bool { return Lookup(id).Gravity }
func Light(id ID) uint8 { return Lookup(id).Light }
func Hardness(id ID) float64 { return Lookup(id).Hardness }

// Transparent reports whether the block does not occlude its neighbors.
func Transparent(id ID) bool { return Lookup(id).Transparent }

// Flammable reports whether fire can consume the block.
func Flammable(id ID) bool { return Lookup(id).Flammable }

// Fluid reports whether the block participates in fluid simulation.
func Fluid(id ID) bool {
	return id == Water || id == StillWater || id == Lava || id == StillLava
}

// Breakable reports whether a player edit may remove the block.
func Breakable(id ID) bool { return Lookup(id).Hardness >= 0 }
