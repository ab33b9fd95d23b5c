package wasmtest

// Fixed guest memory addresses used by Guest.
const (
	// RecordAddr holds the node record written by create_node in initialize.
	RecordAddr = 1024
	// LookupAddr receives records fetched through the lookup export.
	LookupAddr = 2048
	// DataAddr is where the name and log payloads are placed.
	DataAddr = 8192
	// HeapBase is the first address handed out by allocate.
	HeapBase = 16384
)

type guestConfig struct {
	omit          map[string]bool
	name          string
	logMessage    string
	layoutVersion int32
}

// GuestOption customizes the module built by Guest.
type GuestOption func(*guestConfig)

// WithLayoutVersion sets the value returned by websg_layout_version.
func WithLayoutVersion(v int32) GuestOption {
	return func(c *guestConfig) {
		c.layoutVersion = v
	}
}

// WithoutExport leaves the named export out of the module.
func WithoutExport(name string) GuestOption {
	return func(c *guestConfig) {
		c.omit[name] = true
	}
}

// WithName makes commit send name as the node name.
func WithName(name string) GuestOption {
	return func(c *guestConfig) {
		c.name = name
	}
}

// WithLogMessage makes initialize send payload through log_message first.
func WithLogMessage(payload string) GuestOption {
	return func(c *guestConfig) {
		c.logMessage = payload
	}
}

// Guest builds a guest module importing the websg host functions.
//
// Exports:
//
//	memory, allocate, deallocate, _initialize
//	initialize()           create_node into RecordAddr, then position.y = 1.6
//	update()               no-op
//	websg_layout_version() layout version (1 unless overridden)
//	commit() i32           update_node(RecordAddr)
//	lookup(id) i32         get_node(id, LookupAddr)
//	attach(p, c) i32       add_child(p, c)
//	detach(p, c) i32       remove_child(p, c)
//	create_at(ptr)         create_node(ptr)
//	local_id() i32         id field of the record at RecordAddr
//	local_y() f32          position.y of the record at RecordAddr
//
// initialize traps if _initialize has not run.
func Guest(opts ...GuestOption) []byte {
	cfg := guestConfig{omit: map[string]bool{}, layoutVersion: 1}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Module{
		Imports: []Import{
			{Module: "websg", Name: "create_node", Type: FuncType{Params: []ValType{I32}}},
			{Module: "websg", Name: "get_node", Type: FuncType{Params: []ValType{I32, I32}, Results: []ValType{I32}}},
			{Module: "websg", Name: "update_node", Type: FuncType{Params: []ValType{I32}, Results: []ValType{I32}}},
			{Module: "websg", Name: "add_child", Type: FuncType{Params: []ValType{I32, I32}, Results: []ValType{I32}}},
			{Module: "websg", Name: "remove_child", Type: FuncType{Params: []ValType{I32, I32}, Results: []ValType{I32}}},
			{Module: "websg", Name: "log_message", Type: FuncType{Params: []ValType{I64}}},
		},
		Globals: []Global{
			{Type: I32, Mutable: true, Init: HeapBase}, // heap top
			{Type: I32, Mutable: true, Init: 0},        // started
		},
		MemoryPages:  1,
		ExportMemory: !cfg.omit["memory"],
	}
	const (
		heap    = 0
		started = 1
	)
	createNode := m.FuncIndex("create_node")

	var data []byte
	var namePtr, logPtr int32
	if cfg.name != "" {
		namePtr = DataAddr
		data = append(data, cfg.name...)
	}
	if cfg.logMessage != "" {
		logPtr = DataAddr + int32(len(data))
		data = append(data, cfg.logMessage...)
	}
	if len(data) > 0 {
		m.Data = []Data{{Offset: DataAddr, Bytes: data}}
	}

	initialize := NewCode().
		GlobalGet(started).I32Eqz().If().Unreachable().End()
	if cfg.logMessage != "" {
		initialize.I64Const(int64(logPtr)<<32 | int64(len(cfg.logMessage))).Call(m.FuncIndex("log_message"))
	}
	initialize.
		I32Const(RecordAddr).Call(createNode).
		I32Const(RecordAddr).F32Const(1.6).F32Store(16)

	commit := NewCode()
	if cfg.name != "" {
		commit.I32Const(RecordAddr).I32Const(namePtr).I32Store(4).
			I32Const(RecordAddr).I32Const(int32(len(cfg.name))).I32Store(8)
	}
	commit.I32Const(RecordAddr).Call(m.FuncIndex("update_node"))

	i32 := []ValType{I32}
	funcs := []Func{
		{Export: "allocate", Type: FuncType{Params: i32, Results: i32},
			Body: NewCode().GlobalGet(heap).GlobalGet(heap).LocalGet(0).I32Add().GlobalSet(heap)},
		{Export: "deallocate", Type: FuncType{Params: []ValType{I32, I32}}},
		{Export: "_initialize", Body: NewCode().I32Const(1).GlobalSet(started)},
		{Export: "initialize", Body: initialize},
		{Export: "update"},
		{Export: "websg_layout_version", Type: FuncType{Results: i32},
			Body: NewCode().I32Const(cfg.layoutVersion)},
		{Export: "commit", Type: FuncType{Results: i32}, Body: commit},
		{Export: "lookup", Type: FuncType{Params: i32, Results: i32},
			Body: NewCode().LocalGet(0).I32Const(LookupAddr).Call(m.FuncIndex("get_node"))},
		{Export: "attach", Type: FuncType{Params: []ValType{I32, I32}, Results: i32},
			Body: NewCode().LocalGet(0).LocalGet(1).Call(m.FuncIndex("add_child"))},
		{Export: "detach", Type: FuncType{Params: []ValType{I32, I32}, Results: i32},
			Body: NewCode().LocalGet(0).LocalGet(1).Call(m.FuncIndex("remove_child"))},
		{Export: "create_at", Type: FuncType{Params: i32},
			Body: NewCode().LocalGet(0).Call(createNode)},
		{Export: "local_id", Type: FuncType{Results: i32},
			Body: NewCode().I32Const(RecordAddr).I32Load(0)},
		{Export: "local_y", Type: FuncType{Results: []ValType{F32}},
			Body: NewCode().I32Const(RecordAddr).F32Load(16)},
	}
	for _, f := range funcs {
		if cfg.omit[f.Export] {
			f.Export = ""
		}
		m.Funcs = append(m.Funcs, f)
	}
	return m.Encode()
}
