package tile

// Key: упакованные координаты чанка: старшие 32 бита X, младшие Y.
// Упаковка без потерь для всего диапазона int32.
type Key uint64

// PackKey упаковывает координаты чанка
func PackKey(cx, cy int) Key {
	return Key(uint64(uint32(int32(cx)))<<32 | uint64(uint32(int32(cy))))
}

// Unpack возвращает координаты чанка
func (k Key) Unpack() (cx, cy int) {
	return int(int32(uint32(k >> 32))), int(int32(uint32(k)))
}
