package accesscontrol

// Role 角色位标识
// 每个账户的角色集合为位集 (bitset), 一个账户可同时持有任意角色组合
type Role uint32

const (
	RoleMasterAdmin        Role = 1 << iota // 顶级管理员
	RoleMinter                              // 铸造权限
	RoleAuctionManager                      // 拍卖管理
	RoleCustomizationAdmin                  // 自定义属性管理
	RolePriceManager                        // 费率管理
	RolePauser                              // 全局暂停
	RoleWithdrawer                          // 手续费提取
	RoleTrader                              // 交易白名单
	RoleMarketplaceManager                  // 市场运营
	RoleUpgrader                            // 升级管理
	RoleMetadataManager                     // 元数据管理
)

// roleNames 角色名称映射, 与 API 层的字符串表示互转
var roleNames = map[Role]string{
	RoleMasterAdmin:        "MASTER_ADMIN",
	RoleMinter:             "MINTER",
	RoleAuctionManager:     "AUCTION_MANAGER",
	RoleCustomizationAdmin: "CUSTOMIZATION_ADMIN",
	RolePriceManager:       "PRICE_MANAGER",
	RolePauser:             "PAUSER",
	RoleWithdrawer:         "WITHDRAWER",
	RoleTrader:             "TRADER",
	RoleMarketplaceManager: "MARKETPLACE_MANAGER",
	RoleUpgrader:           "UPGRADER",
	RoleMetadataManager:    "METADATA_MANAGER",
}

// String 返回角色名称
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "UNKNOWN"
}

// Valid 判断是否为已定义的单一角色位
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// Names 将角色位集拆分为名称列表, 按位序输出
func (r Role) Names() []string {
	names := make([]string, 0, 4)
	for bit := RoleMasterAdmin; bit <= RoleMetadataManager; bit <<= 1 {
		if r&bit != 0 {
			names = append(names, bit.String())
		}
	}
	return names
}

// RoleFromName 根据名称解析角色
func RoleFromName(name string) (Role, bool) {
	for role, n := range roleNames {
		if n == name {
			return role, true
		}
	}
	return 0, false
}
